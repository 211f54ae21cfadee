// Package game binds the chess rules library to the Kriegspiel domain: boards,
// moves, announcements and the termination rules shared by the referee and
// every belief state.
package game

import "github.com/dylhunn/dragontoothmg"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType values line up with dragontoothmg.Piece so conversions are casts.
type PieceType uint8

const (
	NoPieceType PieceType = PieceType(dragontoothmg.Nothing)
	Pawn        PieceType = PieceType(dragontoothmg.Pawn)
	Knight      PieceType = PieceType(dragontoothmg.Knight)
	Bishop      PieceType = PieceType(dragontoothmg.Bishop)
	Rook        PieceType = PieceType(dragontoothmg.Rook)
	Queen       PieceType = PieceType(dragontoothmg.Queen)
	King        PieceType = PieceType(dragontoothmg.King)
)

// PieceTypes lists the six real piece types in ascending value order.
var PieceTypes = []PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

var pieceTypeNames = map[PieceType]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (p PieceType) String() string {
	if name, ok := pieceTypeNames[p]; ok {
		return name
	}
	return "none"
}

// ParsePieceType accepts the lower-case names used by String.
func ParsePieceType(name string) (PieceType, bool) {
	for pt, n := range pieceTypeNames {
		if n == name {
			return pt, true
		}
	}
	return NoPieceType, false
}

// ParseColor accepts "white" or "black".
func ParseColor(name string) (Color, bool) {
	switch name {
	case "white":
		return White, true
	case "black":
		return Black, true
	}
	return White, false
}

type Piece struct {
	Type  PieceType
	Color Color
}

func (p Piece) String() string {
	return p.Color.String() + " " + p.Type.String()
}
