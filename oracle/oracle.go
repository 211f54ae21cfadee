// Package oracle scores concrete boards for the side to move. Oracles are
// black boxes to the rest of the module: a local material count, a UCI
// engine, or either of those behind HTTP.
package oracle

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"kriegspiel/game"
)

// MateScore is the utility of delivering mate, in centipawns.
const MateScore = 100000

var ErrOracleUnavailable = errors.New("oracle unavailable")

// Oracle returns the utility of b for its side to move, in centipawns.
// Higher is better for that side.
type Oracle interface {
	Evaluate(ctx context.Context, b game.Board) (float64, error)
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, b game.Board) (float64, error)

func (f Func) Evaluate(ctx context.Context, b game.Board) (float64, error) {
	return f(ctx, b)
}

// Material counts material for the side to move. Mated is -MateScore and
// stalemate is 0.
type Material struct{}

func (Material) Evaluate(_ context.Context, b game.Board) (float64, error) {
	return MaterialScore(b), nil
}

func MaterialScore(b game.Board) float64 {
	if !b.HasLegalMoves() {
		if b.InCheck() {
			return -MateScore
		}
		return 0
	}
	return float64(game.Material(b, b.SideToMove()))
}

// EvaluateAll scores boards on up to workers goroutines. The first error
// cancels the rest.
func EvaluateAll(ctx context.Context, o Oracle, boards []game.Board, workers int) ([]float64, error) {
	scores := make([]float64, len(boards))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, b := range boards {
		g.Go(func() error {
			score, err := o.Evaluate(ctx, b)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
