package agent

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"kriegspiel/belief"
	"kriegspiel/game"
	"kriegspiel/oracle"
	"kriegspiel/quantal"
)

type BayesianOption func(*Bayesian)

// WithEnsemble averages each move's utility over n hypotheses drawn from the
// belief instead of only the most probable one.
func WithEnsemble(n int) BayesianOption {
	return func(a *Bayesian) {
		a.ensemble = n
	}
}

// WithEvalWorkers bounds concurrent oracle calls.
func WithEvalWorkers(n int) BayesianOption {
	return func(a *Bayesian) {
		a.workers = n
	}
}

// Bayesian plays from its belief: it scores candidate moves with the oracle
// on the likeliest boards and samples a move from the quantal response.
type Bayesian struct {
	color    game.Color
	belief   *belief.State
	oracle   oracle.Oracle
	model    *quantal.Model
	ensemble int
	workers  int

	tried []game.Move
	last  quantal.Distribution
}

// NewBayesian seats an agent of color c. The belief must already be
// initialised for c.
func NewBayesian(c game.Color, b *belief.State, o oracle.Oracle, m *quantal.Model, opts ...BayesianOption) *Bayesian {
	a := &Bayesian{
		color:    c,
		belief:   b,
		oracle:   o,
		model:    m,
		ensemble: 1,
		workers:  4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Bayesian) Color() game.Color {
	return a.color
}

func (a *Bayesian) Belief() *belief.State {
	return a.belief
}

// LastDistribution is the distribution the previous ChooseMove sampled from.
func (a *Bayesian) LastDistribution() quantal.Distribution {
	return a.last
}

func (a *Bayesian) Observe(ann game.Announcement) error {
	switch {
	case ann.Actor == game.Self && ann.Illegal:
		a.tried = append(a.tried, ann.Move)
	default:
		a.tried = a.tried[:0]
	}
	return a.belief.Observe(ann)
}

func (a *Bayesian) ChooseMove(ctx context.Context) (game.Move, error) {
	moves := a.candidates()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("%s: %w", a.color, ErrNoCandidates)
	}

	var dist quantal.Distribution
	utilities, err := a.utilities(ctx, moves)
	switch {
	case errors.Is(err, oracle.ErrOracleUnavailable):
		log.Warn().Err(err).Msgf("Bayesian %s: oracle unavailable, choosing uniformly among %d moves", a.color, len(moves))
		dist, err = quantal.Uniform(moves)
	case err != nil:
		return game.Move{}, err
	case utilities == nil:
		dist, err = quantal.Uniform(moves)
	default:
		dist, err = a.model.Distribution(moves, utilities)
	}
	if err != nil {
		return game.Move{}, err
	}

	move, err := a.model.Sample(dist)
	if err != nil {
		return game.Move{}, err
	}
	a.last = dist
	log.Debug().Msgf("Bayesian %s: chose %s with p=%.3f from %d candidates over %d hypotheses", a.color, move, dist.Prob(move), len(moves), a.belief.Len())
	return move, nil
}

// candidates are the legal moves on the most probable board not yet refused
// this turn. When those run out it widens to every hypothesis, then to moves
// of its own pieces alone, pawn captures included.
func (a *Bayesian) candidates() []game.Move {
	untried := func(m game.Move, _ int) bool { return !lo.Contains(a.tried, m) }

	top := a.belief.MostProbable()
	if moves := lo.Filter(top.LegalMoves(), untried); len(moves) > 0 {
		return moves
	}

	all := lo.FlatMap(a.belief.Hypotheses(), func(h belief.Hypothesis, _ int) []game.Move {
		return h.Board.LegalMoves()
	})
	if moves := lo.Filter(lo.Uniq(all), untried); len(moves) > 0 {
		return moves
	}

	view := top.OwnView(a.color)
	return lo.Filter(lo.Uniq(append(view.LegalMoves(), pawnTries(view, a.color)...)), untried)
}

// pawnTries are the diagonal pawn moves, which are only legal as captures
// and so never show up on a board without enemy pieces.
func pawnTries(b game.Board, c game.Color) []game.Move {
	dir, last := 1, 7
	if c == game.Black {
		dir, last = -1, 0
	}
	var out []game.Move
	for sq := game.Square(0); sq < 64; sq++ {
		if p, ok := b.PieceAt(sq); !ok || p != (game.Piece{Type: game.Pawn, Color: c}) {
			continue
		}
		for _, df := range []int{-1, 1} {
			f, r := sq.File()+df, sq.Rank()+dir
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			to := game.NewSquare(f, r)
			if p, ok := b.PieceAt(to); ok && p.Color == c {
				continue
			}
			m := game.Move{From: sq, To: to}
			if r == last {
				m.Promotion = game.Queen
			}
			out = append(out, m)
		}
	}
	return out
}

// utilities scores every move from the mover's side, averaged over the
// sampled hypotheses on which it is legal. A move legal on none of them gets
// the worst score seen. Nil means no move could be scored at all.
func (a *Bayesian) utilities(ctx context.Context, moves []game.Move) ([]float64, error) {
	boards := []game.Board{a.belief.MostProbable()}
	if a.ensemble > 1 {
		boards = a.belief.Sample(a.ensemble)
	}

	var successors []game.Board
	owner := make([]int, 0, len(moves)*len(boards))
	for i, m := range moves {
		for _, b := range boards {
			next, err := b.Play(m)
			if err != nil {
				continue
			}
			successors = append(successors, next)
			owner = append(owner, i)
		}
	}
	if len(successors) == 0 {
		return nil, nil
	}

	scores, err := oracle.EvaluateAll(ctx, a.oracle, successors, a.workers)
	if err != nil {
		return nil, err
	}

	sums := make([]float64, len(moves))
	counts := make([]int, len(moves))
	for j, score := range scores {
		// The oracle scores for the side to move, which is the opponent.
		sums[owner[j]] -= score
		counts[owner[j]]++
	}
	worst := math.Inf(1)
	utilities := make([]float64, len(moves))
	for i := range moves {
		if counts[i] > 0 {
			utilities[i] = sums[i] / float64(counts[i])
			worst = math.Min(worst, utilities[i])
		}
	}
	for i := range moves {
		if counts[i] == 0 {
			utilities[i] = worst
		}
	}
	return utilities, nil
}
