// Package prior holds the per-square piece frequency tables used to weight
// belief hypotheses. Tables are produced offline and only loaded here.
package prior

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"kriegspiel/game"
	"kriegspiel/utils"
)

var ErrMalformedPriorTable = errors.New("malformed prior table")

const (
	// RowTolerance is how far a row sum may stray from 1 before the table is
	// rejected. Accepted rows are renormalised exactly.
	RowTolerance = 1e-4
	// LikelihoodFloor keeps a move that history never saw from zeroing out
	// a hypothesis.
	LikelihoodFloor = 1e-9
)

// Table maps (color, piece type) to a distribution over the 64 squares.
// A Table is read-only once built and safe for concurrent use.
type Table struct {
	rows [2][7][64]float64
}

// Row is the on-disk form of one table row. JSON files parse as well, being
// valid YAML.
type Row struct {
	Piece   string    `yaml:"piece" json:"piece"`
	Color   string    `yaml:"color" json:"color"`
	Squares []float64 `yaml:"squares" json:"squares"`
}

type file struct {
	Rows []Row `yaml:"rows" json:"rows"`
}

// Uniform gives every square the same frequency for every piece.
func Uniform() *Table {
	t := &Table{}
	for c := range t.rows {
		for _, pt := range game.PieceTypes {
			for sq := range t.rows[c][pt] {
				t.rows[c][pt][sq] = 1.0 / 64
			}
		}
	}
	return t
}

// Load reads a table from a YAML or JSON file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPriorTable, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPriorTable, err)
	}
	return FromRows(f.Rows)
}

// FromRows validates rows and builds a Table. All twelve (piece, color)
// pairs must be present exactly once, with 64 finite non-negative entries
// summing to 1 within RowTolerance.
func FromRows(rows []Row) (*Table, error) {
	t := &Table{}
	var seen [2][7]bool
	for i, row := range rows {
		pt, ok := game.ParsePieceType(row.Piece)
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unknown piece %q", ErrMalformedPriorTable, i, row.Piece)
		}
		c, ok := game.ParseColor(row.Color)
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unknown color %q", ErrMalformedPriorTable, i, row.Color)
		}
		if seen[c][pt] {
			return nil, fmt.Errorf("%w: duplicate row for %s %s", ErrMalformedPriorTable, row.Color, row.Piece)
		}
		seen[c][pt] = true
		if len(row.Squares) != 64 {
			return nil, fmt.Errorf("%w: %s %s has %d squares, want 64", ErrMalformedPriorTable, row.Color, row.Piece, len(row.Squares))
		}
		for sq, v := range row.Squares {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s %s square %s has value %v", ErrMalformedPriorTable, row.Color, row.Piece, game.Square(sq), v)
			}
		}
		if sum := utils.Sum(row.Squares); math.Abs(sum-1) > RowTolerance {
			return nil, fmt.Errorf("%w: %s %s sums to %v", ErrMalformedPriorTable, row.Color, row.Piece, sum)
		}
		copy(t.rows[c][pt][:], row.Squares)
		utils.Normalize(t.rows[c][pt][:])
	}
	for _, c := range []game.Color{game.White, game.Black} {
		for _, pt := range game.PieceTypes {
			if !seen[c][pt] {
				return nil, fmt.Errorf("%w: missing row for %s %s", ErrMalformedPriorTable, c, pt)
			}
		}
	}
	return t, nil
}

// Frequency is the table entry for p standing on sq.
func (t *Table) Frequency(p game.Piece, sq game.Square) float64 {
	if !sq.Valid() || p.Type == game.NoPieceType {
		return 0
	}
	return t.rows[p.Color][p.Type][sq]
}

// MoveLikelihood is the product of the frequencies of every piece m moves on
// b, taken at its destination. Castling moves the king and the rook and a
// promotion counts the promoted piece. The result is never below
// LikelihoodFloor.
func (t *Table) MoveLikelihood(b game.Board, m game.Move) float64 {
	p, ok := b.PieceAt(m.From)
	if !ok {
		return LikelihoodFloor
	}
	if m.Promotion != game.NoPieceType {
		p.Type = m.Promotion
	}
	l := t.Frequency(p, m.To)
	if p.Type == game.King && abs(m.To.File()-m.From.File()) == 2 {
		rookFile := 5
		if m.To.File() == 2 {
			rookFile = 3
		}
		l *= t.Frequency(game.Piece{Type: game.Rook, Color: p.Color}, game.NewSquare(rookFile, m.To.Rank()))
	}
	return math.Max(l, LikelihoodFloor)
}

// Rows returns the table in its on-disk form.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, 12)
	for _, c := range []game.Color{game.White, game.Black} {
		for _, pt := range game.PieceTypes {
			squares := make([]float64, 64)
			copy(squares, t.rows[c][pt][:])
			rows = append(rows, Row{Piece: pt.String(), Color: c.String(), Squares: squares})
		}
	}
	return rows
}

// Marshal encodes the table as YAML.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Rows: t.Rows()})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
