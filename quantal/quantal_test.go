package quantal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

var moves = []game.Move{
	game.MustMove("e2e4"),
	game.MustMove("d2d4"),
	game.MustMove("g1f3"),
	game.MustMove("b1c3"),
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

func TestCompute(t *testing.T) {
	utilities := []float64{0, 50, -20, 10}

	t.Run("zero rationality is uniform", func(t *testing.T) {
		d, err := Compute(moves, utilities, 0)
		require.NoError(t, err)
		for _, p := range d.Probs {
			require.InDelta(t, 0.25, p, 1e-12)
		}
	})

	t.Run("keeps input order and sums to one", func(t *testing.T) {
		d, err := Compute(moves, utilities, 0.02)
		require.NoError(t, err)
		require.Equal(t, moves, d.Moves)
		require.InDelta(t, 1.0, sum(d.Probs), 1e-12)
		require.InDelta(t, math.Exp(0.02*50)/(1+math.Exp(0.02*50)+math.Exp(-0.02*20)+math.Exp(0.02*10)), d.Prob(moves[1]), 1e-12)
	})

	t.Run("mass on the best move grows with rationality", func(t *testing.T) {
		previous := 0.0
		for _, lambda := range []float64{0, 0.001, 0.01, 0.05, 0.1, 0.2} {
			d, err := Compute(moves, utilities, lambda)
			require.NoError(t, err)
			p := d.Prob(game.MustMove("d2d4"))
			require.Greater(t, p, previous, "lambda %v", lambda)
			previous = p
		}
	})

	t.Run("infinite rationality splits over the best moves", func(t *testing.T) {
		d, err := Compute(moves, []float64{3, 1, 3, 2}, math.Inf(1))
		require.NoError(t, err)
		require.Equal(t, []float64{0.5, 0, 0.5, 0}, d.Probs)
	})

	t.Run("large utilities do not overflow", func(t *testing.T) {
		d, err := Compute(moves, []float64{1e6, 1e6 - 1, 0, -1e6}, 10)
		require.NoError(t, err)
		require.InDelta(t, 1.0, sum(d.Probs), 1e-12)
		require.False(t, math.IsNaN(d.Probs[0]))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := Compute(nil, nil, 1)
		require.ErrorIs(t, err, ErrNoMoves)
		_, err = Compute(moves, utilities[:2], 1)
		require.ErrorIs(t, err, ErrUtilityMismatch)
		_, err = Compute(moves, utilities, -1)
		require.ErrorIs(t, err, ErrNegativeRationality)
		_, err = Compute(moves, []float64{0, math.NaN(), 0, 0}, 1)
		require.ErrorIs(t, err, ErrInvalidUtility)
	})
}

func TestDistribution(t *testing.T) {
	d, err := Compute(moves, []float64{0, 50, -20, 50}, 0.1)
	require.NoError(t, err)

	best, err := d.Best()
	require.NoError(t, err)
	require.Equal(t, moves[1], best, "Ties should go to the earlier move")
	require.Zero(t, d.Prob(game.MustMove("a2a3")))
	require.Len(t, d.Map(), 4)

	u, err := Uniform(moves)
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, u.Probs)
	_, err = Uniform(nil)
	require.ErrorIs(t, err, ErrNoMoves)
}

func TestSample(t *testing.T) {
	t.Run("never draws a zero probability move", func(t *testing.T) {
		d := Distribution{Moves: moves, Probs: []float64{0, 1, 0, 0}}
		src := NewSource(7)
		for i := 0; i < 100; i++ {
			m, err := Sample(d, src)
			require.NoError(t, err)
			require.Equal(t, moves[1], m)
		}
	})

	t.Run("same seed gives the same draws", func(t *testing.T) {
		d, err := Uniform(moves)
		require.NoError(t, err)
		a, err := NewModel(0, NewSource(42))
		require.NoError(t, err)
		b, err := NewModel(0, NewSource(42))
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			ma, err := a.Sample(d)
			require.NoError(t, err)
			mb, err := b.Sample(d)
			require.NoError(t, err)
			require.Equal(t, ma, mb)
		}
	})

	t.Run("frequencies follow the distribution", func(t *testing.T) {
		d := Distribution{Moves: moves[:2], Probs: []float64{0.2, 0.8}}
		src := NewSource(1)
		counts := map[game.Move]int{}
		const draws = 20000
		for i := 0; i < draws; i++ {
			m, err := Sample(d, src)
			require.NoError(t, err)
			counts[m]++
		}
		require.InDelta(t, 0.2, float64(counts[moves[0]])/draws, 0.02)
	})

	t.Run("model rejects negative rationality", func(t *testing.T) {
		_, err := NewModel(-0.5, nil)
		require.ErrorIs(t, err, ErrNegativeRationality)
	})

	t.Run("choose returns the distribution it drew from", func(t *testing.T) {
		m, err := NewModel(math.Inf(1), NewSource(3))
		require.NoError(t, err)
		move, d, err := m.Choose(moves, []float64{1, 2, 3, 4})
		require.NoError(t, err)
		require.Equal(t, moves[3], move)
		require.Equal(t, 1.0, d.Prob(moves[3]))
	})
}
