package game

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

var (
	knightAttacks [64]uint64
	// pawnAttacks[c][sq] are the squares a pawn of color c on sq attacks.
	pawnAttacks [2][64]uint64
)

func init() {
	knightSteps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	for sq := Square(0); sq < 64; sq++ {
		for _, step := range knightSteps {
			if t, ok := offset(sq, step[0], step[1]); ok {
				knightAttacks[sq] |= t.bit()
			}
		}
		for _, df := range []int{-1, 1} {
			if t, ok := offset(sq, df, 1); ok {
				pawnAttacks[White][sq] |= t.bit()
			}
			if t, ok := offset(sq, df, -1); ok {
				pawnAttacks[Black][sq] |= t.bit()
			}
		}
	}
}

func offset(sq Square, df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

func squares(mask uint64) []Square {
	out := make([]Square, 0, bits.OnesCount64(mask))
	for mask != 0 {
		out = append(out, Square(bits.TrailingZeros64(mask)))
		mask &= mask - 1
	}
	return out
}

// checkers returns the directions from which by's pieces attack the king of
// the other side.
func (b Board) checkers(by Color) CheckSet {
	victim := b.bitboards(by.Other())
	if victim.Kings == 0 {
		return 0
	}
	king := Square(bits.TrailingZeros64(victim.Kings))
	attacker := b.bitboards(by)
	occ := b.occupancy()

	var set CheckSet
	if knightAttacks[king]&attacker.Knights != 0 {
		set |= CheckKnight
	}
	// A pawn of color by attacks king iff a pawn of the victim's color on the
	// king square would attack that pawn.
	for _, sq := range squares(pawnAttacks[by.Other()][king] & attacker.Pawns) {
		set |= diagonalHint(king, sq)
	}
	diagonal := dragontoothmg.CalculateBishopMoveBitboard(uint8(king), occ)
	for _, sq := range squares(diagonal & (attacker.Bishops | attacker.Queens)) {
		set |= diagonalHint(king, sq)
	}
	straight := dragontoothmg.CalculateRookMoveBitboard(uint8(king), occ)
	for _, sq := range squares(straight & (attacker.Rooks | attacker.Queens)) {
		if sq.File() == king.File() {
			set |= CheckVertical
		} else {
			set |= CheckHorizontal
		}
	}
	return set
}

// diagonalHint classifies a diagonal attack from sq on king as coming along
// the longer or the shorter of the two diagonals through the king's square.
func diagonalHint(king, sq Square) CheckSet {
	var along, other int
	if sq.File()-king.File() == sq.Rank()-king.Rank() {
		along, other = diagonalLength(king), antiDiagonalLength(king)
	} else {
		along, other = antiDiagonalLength(king), diagonalLength(king)
	}
	if along > other {
		return CheckLongDiagonal
	}
	return CheckShortDiagonal
}
