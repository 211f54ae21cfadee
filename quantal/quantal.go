// Package quantal turns move utilities into a quantal response distribution:
// P(m) is proportional to exp(λ·u(m)), so λ = 0 picks uniformly and a large
// λ approaches the best response.
package quantal

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"kriegspiel/game"
	"kriegspiel/utils"
)

var (
	ErrNoMoves             = errors.New("no moves")
	ErrNegativeRationality = errors.New("rationality must be non-negative")
	ErrUtilityMismatch     = errors.New("one utility per move required")
	ErrInvalidUtility      = errors.New("utility must be finite")
)

// Distribution is a probability per move, in the order the moves were given.
type Distribution struct {
	Moves []game.Move
	Probs []float64
}

func (d Distribution) Len() int {
	return len(d.Moves)
}

// Prob is the probability of m, zero if m is not in the distribution.
func (d Distribution) Prob(m game.Move) float64 {
	i := utils.FindIndex(d.Moves, m)
	if i < 0 {
		return 0
	}
	return d.Probs[i]
}

func (d Distribution) Map() map[game.Move]float64 {
	out := make(map[game.Move]float64, len(d.Moves))
	for i, m := range d.Moves {
		out[m] += d.Probs[i]
	}
	return out
}

// Best is the most probable move, the earliest on ties.
func (d Distribution) Best() (game.Move, error) {
	if len(d.Moves) == 0 {
		return game.Move{}, ErrNoMoves
	}
	return d.Moves[floats.MaxIdx(d.Probs)], nil
}

// Compute builds the distribution for moves with the given utilities at
// rationality lambda. lambda may be +Inf, which spreads the mass evenly over
// the moves of maximal utility.
func Compute(moves []game.Move, utilities []float64, lambda float64) (Distribution, error) {
	if len(moves) == 0 {
		return Distribution{}, ErrNoMoves
	}
	if len(utilities) != len(moves) {
		return Distribution{}, fmt.Errorf("%w: %d moves, %d utilities", ErrUtilityMismatch, len(moves), len(utilities))
	}
	if lambda < 0 || math.IsNaN(lambda) {
		return Distribution{}, fmt.Errorf("%w: %v", ErrNegativeRationality, lambda)
	}
	for i, u := range utilities {
		if math.IsNaN(u) || math.IsInf(u, 0) {
			return Distribution{}, fmt.Errorf("%w: %s has utility %v", ErrInvalidUtility, moves[i], u)
		}
	}

	best := floats.Max(utilities)
	probs := make([]float64, len(moves))
	if math.IsInf(lambda, 1) {
		for i, u := range utilities {
			if u == best {
				probs[i] = 1
			}
		}
		utils.Normalize(probs)
		return Distribution{Moves: append([]game.Move(nil), moves...), Probs: probs}, nil
	}

	for i, u := range utilities {
		probs[i] = lambda * (u - best)
	}
	norm := floats.LogSumExp(probs)
	for i := range probs {
		probs[i] = math.Exp(probs[i] - norm)
	}
	return Distribution{Moves: append([]game.Move(nil), moves...), Probs: probs}, nil
}

// Uniform gives every move the same probability.
func Uniform(moves []game.Move) (Distribution, error) {
	if len(moves) == 0 {
		return Distribution{}, ErrNoMoves
	}
	probs := make([]float64, len(moves))
	for i := range probs {
		probs[i] = 1 / float64(len(moves))
	}
	return Distribution{Moves: append([]game.Move(nil), moves...), Probs: probs}, nil
}

// Sample draws one move from d using src.
func Sample(d Distribution, src rand.Source) (game.Move, error) {
	if len(d.Moves) == 0 {
		return game.Move{}, ErrNoMoves
	}
	i := int(distuv.NewCategorical(d.Probs, src).Rand())
	return d.Moves[i], nil
}

// NewSource is the deterministic random source used across the module.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Model is a quantal response player with a fixed rationality and its own
// random source. A Model is not safe for concurrent use.
type Model struct {
	rationality float64
	src         rand.Source
}

func NewModel(rationality float64, src rand.Source) (*Model, error) {
	if rationality < 0 || math.IsNaN(rationality) {
		return nil, fmt.Errorf("%w: %v", ErrNegativeRationality, rationality)
	}
	if src == nil {
		src = NewSource(0)
	}
	return &Model{rationality: rationality, src: src}, nil
}

func (m *Model) Rationality() float64 {
	return m.rationality
}

func (m *Model) Distribution(moves []game.Move, utilities []float64) (Distribution, error) {
	return Compute(moves, utilities, m.rationality)
}

func (m *Model) Sample(d Distribution) (game.Move, error) {
	return Sample(d, m.src)
}

// Choose computes the distribution and draws from it.
func (m *Model) Choose(moves []game.Move, utilities []float64) (game.Move, Distribution, error) {
	d, err := m.Distribution(moves, utilities)
	if err != nil {
		return game.Move{}, Distribution{}, err
	}
	move, err := m.Sample(d)
	return move, d, err
}
