package game

import (
	"fmt"
	"slices"

	"github.com/dylhunn/dragontoothmg"
)

const StartFEN = dragontoothmg.Startpos

// Board is one full configuration of the game: piece placement, side to move,
// castling and en-passant rights, move counters and the position history
// needed for repetition. Board is a value; Play returns a new Board and never
// touches the receiver, so two Boards never share mutable state.
type Board struct {
	pos dragontoothmg.Board
	// Position hashes since the last irreversible move, current position last.
	// Backing arrays are never written after creation.
	history []uint64
}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	b, _ := ParseFEN(StartFEN)
	return b
}

// ParseFEN builds a Board from Forsyth-Edwards notation.
func ParseFEN(fen string) (b Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid fen %q: %v", fen, r)
		}
	}()
	pos := dragontoothmg.ParseFen(fen)
	if pos.White.Kings == 0 || pos.Black.Kings == 0 {
		return Board{}, fmt.Errorf("invalid fen %q: both kings are required", fen)
	}
	return Board{pos: pos, history: []uint64{pos.Hash()}}, nil
}

func MustFEN(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Board) IsZero() bool {
	return b.history == nil
}

func (b Board) FEN() string {
	return b.pos.ToFen()
}

func (b Board) String() string {
	return b.FEN()
}

func (b Board) SideToMove() Color {
	if b.pos.Wtomove {
		return White
	}
	return Black
}

func (b Board) Hash() uint64 {
	return b.pos.Hash()
}

func (b Board) HalfmoveClock() int {
	return int(b.pos.Halfmoveclock)
}

func (b Board) FullmoveNumber() int {
	return int(b.pos.Fullmoveno)
}

// Equal compares placement, side to move, rights and counters. History is
// not compared.
func (b Board) Equal(o Board) bool {
	return b.pos == o.pos
}

// Identical is Equal plus the same repetition history, so the two boards
// behave the same in every future position.
func (b Board) Identical(o Board) bool {
	return b.pos == o.pos && slices.Equal(b.history, o.history)
}

// RepetitionCount is how many times the current position has occurred since
// the last irreversible move, the current occurrence included.
func (b Board) RepetitionCount() int {
	if len(b.history) == 0 {
		return 0
	}
	current := b.history[len(b.history)-1]
	count := 0
	for _, h := range b.history {
		if h == current {
			count++
		}
	}
	return count
}

func (b Board) bitboards(c Color) dragontoothmg.Bitboards {
	if c == White {
		return b.pos.White
	}
	return b.pos.Black
}

func (b Board) occupancy() uint64 {
	return b.pos.White.All | b.pos.Black.All
}

// PieceAt reports the piece on sq, if any.
func (b Board) PieceAt(sq Square) (Piece, bool) {
	for _, c := range []Color{White, Black} {
		if pt := pieceTypeAt(b.bitboards(c), sq); pt != NoPieceType {
			return Piece{Type: pt, Color: c}, true
		}
	}
	return Piece{}, false
}

func pieceTypeAt(bb dragontoothmg.Bitboards, sq Square) PieceType {
	bit := sq.bit()
	if bb.All&bit == 0 {
		return NoPieceType
	}
	switch {
	case bb.Pawns&bit != 0:
		return Pawn
	case bb.Knights&bit != 0:
		return Knight
	case bb.Bishops&bit != 0:
		return Bishop
	case bb.Rooks&bit != 0:
		return Rook
	case bb.Queens&bit != 0:
		return Queen
	case bb.Kings&bit != 0:
		return King
	}
	return NoPieceType
}

// Pieces lists every piece of color c with its square, a1 first.
func (b Board) Pieces(c Color) map[Square]PieceType {
	bb := b.bitboards(c)
	out := make(map[Square]PieceType, 16)
	for sq := Square(0); sq < 64; sq++ {
		if pt := pieceTypeAt(bb, sq); pt != NoPieceType {
			out[sq] = pt
		}
	}
	return out
}

// InCheck reports whether the side to move is in check.
func (b Board) InCheck() bool {
	pos := b.pos
	return pos.OurKingInCheck()
}

func (b Board) dragonMoves() []dragontoothmg.Move {
	pos := b.pos
	return pos.GenerateLegalMoves()
}

// LegalMoves lists the legal moves of the side to move.
func (b Board) LegalMoves() []Move {
	dms := b.dragonMoves()
	moves := make([]Move, len(dms))
	for i, dm := range dms {
		moves[i] = fromDragon(dm)
	}
	return moves
}

func (b Board) HasLegalMoves() bool {
	return len(b.dragonMoves()) > 0
}

func (b Board) find(m Move) (dragontoothmg.Move, bool) {
	for _, dm := range b.dragonMoves() {
		if m.matches(dm) {
			return dm, true
		}
	}
	return 0, false
}

func (b Board) IsLegal(m Move) bool {
	_, ok := b.find(m)
	return ok
}

// Play returns the board after the legal move m.
func (b Board) Play(m Move) (Board, error) {
	dm, ok := b.find(m)
	if !ok {
		return Board{}, fmt.Errorf("illegal move %s in %s", m, b.FEN())
	}
	return b.play(dm), nil
}

// Relabel plays m without checking legality against the opponent's pieces.
// The side to move must own a piece on m.From. Used when the mover knows the
// move was accepted on the true board but the board at hand is a guess.
func (b Board) Relabel(m Move) (Board, error) {
	p, ok := b.PieceAt(m.From)
	if !ok || p.Color != b.SideToMove() {
		return Board{}, fmt.Errorf("no %s piece on %s in %s", b.SideToMove(), m.From, b.FEN())
	}
	if dm, ok := b.find(m); ok {
		return b.play(dm), nil
	}
	dm, err := dragontoothmg.ParseMove(m.String())
	if err != nil {
		return Board{}, fmt.Errorf("relabel %s: %w", m, err)
	}
	return b.play(dm), nil
}

func (b Board) play(dm dragontoothmg.Move) Board {
	irreversible := b.isIrreversible(dm)
	next := b.pos
	next.Apply(dm)

	h := next.Hash()
	var history []uint64
	if irreversible {
		history = []uint64{h}
	} else {
		history = make([]uint64, len(b.history)+1)
		copy(history, b.history)
		history[len(b.history)] = h
	}
	return Board{pos: next, history: history}
}

func (b Board) isIrreversible(dm dragontoothmg.Move) bool {
	if _, ok := b.capturedSquare(dm); ok {
		return true
	}
	from := Square(dm.From())
	return (b.pos.White.Pawns|b.pos.Black.Pawns)&from.bit() != 0
}

// capturedSquare is the square of the piece dm captures. For en passant that
// is the square behind the destination, not the destination itself.
func (b Board) capturedSquare(dm dragontoothmg.Move) (Square, bool) {
	from, to := Square(dm.From()), Square(dm.To())
	them := b.bitboards(b.SideToMove().Other())
	if them.All&to.bit() != 0 {
		return to, true
	}
	us := b.bitboards(b.SideToMove())
	if us.Pawns&from.bit() == 0 || from.File() == to.File() {
		return NoSquare, false
	}
	if b.SideToMove() == White {
		return to - 8, true
	}
	return to + 8, true
}

// OwnView keeps only c's pieces plus the opponent king, which move generation
// needs. The result is for enumerating c's candidate moves, not for play.
func (b Board) OwnView(c Color) Board {
	pos := b.pos
	if c == White {
		pos.Black = dragontoothmg.Bitboards{Kings: pos.Black.Kings, All: pos.Black.Kings}
	} else {
		pos.White = dragontoothmg.Bitboards{Kings: pos.White.Kings, All: pos.White.Kings}
	}
	return Board{pos: pos, history: []uint64{pos.Hash()}}
}
