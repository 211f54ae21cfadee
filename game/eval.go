package game

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// PieceValues are centipawn values; the king is not counted.
var PieceValues = [...]int{
	NoPieceType: 0,
	Pawn:        100,
	Knight:      300,
	Bishop:      300,
	Rook:        500,
	Queen:       900,
	King:        0,
}

// Material is c's material minus the other side's, in centipawns.
func Material(b Board, c Color) int {
	return materialOf(b.bitboards(c)) - materialOf(b.bitboards(c.Other()))
}

func materialOf(bb dragontoothmg.Bitboards) int {
	return bits.OnesCount64(bb.Pawns)*PieceValues[Pawn] +
		bits.OnesCount64(bb.Knights)*PieceValues[Knight] +
		bits.OnesCount64(bb.Bishops)*PieceValues[Bishop] +
		bits.OnesCount64(bb.Rooks)*PieceValues[Rook] +
		bits.OnesCount64(bb.Queens)*PieceValues[Queen]
}
