package game

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"
)

// Move is a from/to pair with an optional promotion. It is comparable and
// usable as a map key.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// ParseMove reads UCI long algebraic notation ("e2e4", "e7e8q").
func ParseMove(text string) (Move, error) {
	if len(text) != 4 && len(text) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", text)
	}
	from, err := ParseSquare(text[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", text, err)
	}
	to, err := ParseSquare(text[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", text, err)
	}
	m := Move{From: from, To: to}
	if len(text) == 5 {
		switch text[4] {
		case 'n':
			m.Promotion = Knight
		case 'b':
			m.Promotion = Bishop
		case 'r':
			m.Promotion = Rook
		case 'q':
			m.Promotion = Queen
		default:
			return Move{}, fmt.Errorf("invalid promotion in move %q", text)
		}
	}
	return m, nil
}

func MustMove(text string) Move {
	m, err := ParseMove(text)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	switch m.Promotion {
	case Knight:
		s += "n"
	case Bishop:
		s += "b"
	case Rook:
		s += "r"
	case Queen:
		s += "q"
	}
	return s
}

func fromDragon(dm dragontoothmg.Move) Move {
	return Move{
		From:      Square(dm.From()),
		To:        Square(dm.To()),
		Promotion: PieceType(dm.Promote()),
	}
}

func (m Move) matches(dm dragontoothmg.Move) bool {
	return Square(dm.From()) == m.From && Square(dm.To()) == m.To && PieceType(dm.Promote()) == m.Promotion
}
