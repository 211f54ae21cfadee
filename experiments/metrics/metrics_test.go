package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

func TestCollector(t *testing.T) {
	t.Run("counts attempts per move", func(t *testing.T) {
		c := NewCollector()
		c.Start(4, game.White)
		c.AddAttempt(true)
		c.AddAttempt(true)
		c.AddAttempt(false)
		m := c.Complete(game.MustMove("e2e4"), 17, game.Announcement{CaptureSquare: game.NoSquare})

		require.Equal(t, 4, m.Step)
		require.Equal(t, game.White, m.Player)
		require.Equal(t, 3, m.Attempts)
		require.Equal(t, 2, m.Illegal)
		require.Equal(t, 17, m.Hypotheses)
		require.Equal(t, "quiet", m.Announcement)
	})

	t.Run("start resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(0, game.White)
		c.AddAttempt(true)
		c.Start(1, game.Black)
		c.AddAttempt(false)
		m := c.Complete(game.MustMove("e7e5"), 0, game.Announcement{})
		require.Equal(t, 1, m.Attempts)
		require.Zero(t, m.Illegal)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, game.Black)
		c.AddAttempt(true)
		require.Equal(t, MoveMetric{}, c.Complete(game.MustMove("e7e5"), 3, game.Announcement{}))
	})
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "evaluation")
	require.NoError(t, err)

	require.NoError(t, w.WriteGameRecords([]GameRecord{
		{ID: 1, Agent1: 1, Agent2: 2, GameMetric: GameMetric{Winner: "white", Outcome: game.Checkmate, TotalMoves: 31}},
	}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{
		{Game: 1, MoveMetric: MoveMetric{Step: 0, Player: game.White, Move: game.MustMove("e2e4"), Attempts: 1, Announcement: "quiet"}},
	}))
	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Kind: "bayesian", Rationality: 0.02}}))

	f, err := os.Open(filepath.Join(w.Dir(), "games.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "winner", rows[0][3])
	require.Equal(t, "white", rows[1][3])
	require.Equal(t, "checkmate", rows[1][4])

	for _, name := range []string{"moves.csv", "agents.csv"} {
		_, err := os.Stat(filepath.Join(w.Dir(), name))
		require.NoError(t, err)
	}
}
