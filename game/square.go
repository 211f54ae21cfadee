package game

import "fmt"

// Square indexes the board a1=0 .. h8=63, file-major within a rank.
type Square uint8

const NoSquare Square = 64

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) Valid() bool { return s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func (s Square) bit() uint64 { return 1 << uint64(s) }

// ParseSquare reads algebraic notation such as "e4".
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	file, rank := text[0], text[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	return NewSquare(int(file-'a'), int(rank-'1')), nil
}

// MustSquare is ParseSquare for constants and tests.
func MustSquare(text string) Square {
	sq, err := ParseSquare(text)
	if err != nil {
		panic(err)
	}
	return sq
}

// diagonalLength is the number of squares on the a1-h8 direction diagonal
// through s; antiDiagonalLength the same for the a8-h1 direction.
func diagonalLength(s Square) int {
	return 8 - abs(s.File()-s.Rank())
}

func antiDiagonalLength(s Square) int {
	return 8 - abs(s.File()+s.Rank()-7)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
