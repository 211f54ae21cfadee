package experiments

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

func smallConfig(t *testing.T, opponent string) Config {
	return Config{
		Games:               2,
		OutDir:              t.TempDir(),
		Opponent:            opponent,
		AgentRationality:    0.02,
		OpponentRationality: 0.004,
		MaxHypotheses:       32,
		Workers:             2,
		FilterOwnMoves:      true,
		MaxAttempts:         400,
		Announcer:           game.Announcer{MoveCap: 10},
		Seed:                7,
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	for _, opponent := range []string{OpponentRandom, OpponentQuantal} {
		t.Run(opponent, func(t *testing.T) {
			summary, err := Evaluate(ctx, smallConfig(t, opponent))
			require.NoError(t, err)
			require.Equal(t, 2, summary.Games)
			require.Equal(t, 2, summary.Wins+summary.Draws+summary.Losses)
			require.NotEmpty(t, summary.Dir)

			f, err := os.Open(filepath.Join(summary.Dir, "games.csv"))
			require.NoError(t, err)
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 3)

			f, err = os.Open(filepath.Join(summary.Dir, "moves.csv"))
			require.NoError(t, err)
			defer f.Close()
			rows, err = csv.NewReader(f).ReadAll()
			require.NoError(t, err)
			require.Greater(t, len(rows), 1)
			require.LessOrEqual(t, len(rows), 1+2*10)
		})
	}

	t.Run("unknown opponent", func(t *testing.T) {
		_, err := Evaluate(ctx, smallConfig(t, "grandmaster"))
		require.Error(t, err)
	})

	t.Run("no output directory writes nothing", func(t *testing.T) {
		cfg := smallConfig(t, OpponentRandom)
		cfg.OutDir = ""
		cfg.Games = 1
		summary, err := Evaluate(ctx, cfg)
		require.NoError(t, err)
		require.Empty(t, summary.Dir)
	})
}

func TestPlayGameIsReproducible(t *testing.T) {
	cfg := smallConfig(t, OpponentQuantal)
	first, firstMoves, err := PlayGame(context.Background(), cfg, 42)
	require.NoError(t, err)
	second, secondMoves, err := PlayGame(context.Background(), cfg, 42)
	require.NoError(t, err)

	require.Equal(t, first.Outcome, second.Outcome)
	require.Equal(t, first.TotalMoves, second.TotalMoves)
	require.Equal(t, len(firstMoves), len(secondMoves))
	for i := range firstMoves {
		require.Equal(t, firstMoves[i].Move, secondMoves[i].Move)
		require.Equal(t, firstMoves[i].Attempts, secondMoves[i].Attempts)
	}
}

func TestPlayGameFromPosition(t *testing.T) {
	cfg := smallConfig(t, OpponentRandom)
	// White mates at once or keeps the extra queen until the cap.
	start := game.MustFEN("7k/5Q2/6K1/8/8/8/8/8 w - - 0 1")
	cfg.Start = &start
	cfg.AgentRationality = 1
	gm, moves, err := PlayGame(context.Background(), cfg, 1)
	require.NoError(t, err)
	require.True(t, gm.Outcome.Over())
	require.NotEqual(t, "black", gm.Winner)
	require.NotEmpty(t, moves)
	require.Equal(t, game.White, moves[0].Player)
}
