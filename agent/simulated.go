package agent

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"kriegspiel/belief"
	"kriegspiel/game"
	"kriegspiel/oracle"
	"kriegspiel/quantal"
)

// Quantal is an omniscient simulated opponent: it reads the true board and
// samples a quantal response over its legal moves.
type Quantal struct {
	color  game.Color
	peek   func() game.Board
	oracle oracle.Oracle
	model  *quantal.Model
}

// NewQuantal seats a simulated opponent. peek must return the true board.
func NewQuantal(c game.Color, peek func() game.Board, o oracle.Oracle, m *quantal.Model) *Quantal {
	return &Quantal{color: c, peek: peek, oracle: o, model: m}
}

// NewRandom seats a player choosing uniformly among its legal moves.
func NewRandom(c game.Color, peek func() game.Board, src rand.Source) *Quantal {
	m, _ := quantal.NewModel(0, src)
	return NewQuantal(c, peek, oracle.Material{}, m)
}

func (q *Quantal) Color() game.Color {
	return q.color
}

func (q *Quantal) Observe(game.Announcement) error {
	return nil
}

func (q *Quantal) ChooseMove(ctx context.Context) (game.Move, error) {
	b := q.peek()
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("%s: %w", q.color, ErrNoCandidates)
	}
	if q.model.Rationality() == 0 {
		d, err := quantal.Uniform(moves)
		if err != nil {
			return game.Move{}, err
		}
		return q.model.Sample(d)
	}

	utilities, err := moveUtilities(ctx, q.oracle, b, moves, 1)
	if err != nil {
		log.Warn().Err(err).Msgf("Quantal %s: oracle failed, choosing uniformly", q.color)
		d, err := quantal.Uniform(moves)
		if err != nil {
			return game.Move{}, err
		}
		return q.model.Sample(d)
	}
	move, _, err := q.model.Choose(moves, utilities)
	return move, err
}

// moveUtilities scores each legal move of b for the side to move.
func moveUtilities(ctx context.Context, o oracle.Oracle, b game.Board, moves []game.Move, workers int) ([]float64, error) {
	boards := make([]game.Board, len(moves))
	for i, m := range moves {
		next, err := b.Play(m)
		if err != nil {
			return nil, err
		}
		boards[i] = next
	}
	scores, err := oracle.EvaluateAll(ctx, o, boards, workers)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i] = -scores[i]
	}
	return scores, nil
}

// OpponentModel is a belief likelihood that expects the opponent to play a
// quantal response to o at the given rationality. Each move's factor is its
// probability among all legal moves of the parent board.
func OpponentModel(o oracle.Oracle, rationality float64) belief.Likelihood {
	return func(parent game.Board, moves []game.Move) []float64 {
		out := make([]float64, len(moves))
		for i := range out {
			out[i] = 1
		}
		all := parent.LegalMoves()
		utilities, err := moveUtilities(context.Background(), o, parent, all, 1)
		if err != nil {
			log.Debug().Err(err).Msg("Opponent model: falling back to flat likelihood")
			return out
		}
		d, err := quantal.Compute(all, utilities, rationality)
		if err != nil {
			return out
		}
		for i, m := range moves {
			out[i] = d.Prob(m)
		}
		return out
	}
}
