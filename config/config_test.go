package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{
		"KRIEG_MAX_HYPOTHESES", "KRIEG_AGENT_RATIONALITY", "KRIEG_OPPONENT_RATIONALITY",
		"KRIEG_PRIOR_PATH", "KRIEG_ENGINE_PATH", "KRIEG_ENGINE_DEPTH", "KRIEG_ORACLE_URL",
		"KRIEG_ORACLE_TIMEOUT", "KRIEG_CHECK_HINTS", "KRIEG_MOVE_CAP", "KRIEG_MAX_ATTEMPTS",
		"KRIEG_WORKERS", "KRIEG_ENSEMBLE", "KRIEG_FILTER_OWN_MOVES", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	require.Equal(t, 2000, MaxHypotheses())
	require.Equal(t, 0.02, AgentRationality())
	require.Equal(t, 0.004, OpponentRationality())
	require.Empty(t, PriorPath())
	require.Empty(t, EnginePath())
	require.Equal(t, 12, EngineDepth())
	require.Empty(t, OracleURL())
	require.Equal(t, 5*time.Second, OracleTimeout())
	require.Equal(t, game.CheckHintDirection, CheckHints())
	require.Equal(t, 600, MoveCap())
	require.Equal(t, 64, MaxAttempts())
	require.Equal(t, runtime.NumCPU(), Workers())
	require.Equal(t, 1, Ensemble())
	require.True(t, FilterOwnMoves())
	require.Equal(t, zerolog.InfoLevel, LogLevel())
}

func TestOverrides(t *testing.T) {
	t.Run("valid values are used", func(t *testing.T) {
		t.Setenv("KRIEG_MAX_HYPOTHESES", "50")
		t.Setenv("KRIEG_AGENT_RATIONALITY", "0.5")
		t.Setenv("KRIEG_ORACLE_TIMEOUT", "250ms")
		t.Setenv("KRIEG_CHECK_HINTS", "none")
		t.Setenv("KRIEG_MOVE_CAP", "0")
		t.Setenv("KRIEG_FILTER_OWN_MOVES", "false")
		t.Setenv("KRIEG_SEED", "99")
		t.Setenv("LOG_LEVEL", "debug")

		require.Equal(t, 50, MaxHypotheses())
		require.Equal(t, 0.5, AgentRationality())
		require.Equal(t, 250*time.Millisecond, OracleTimeout())
		require.Equal(t, game.Announcer{Checks: game.CheckHintNone, MoveCap: 0}, Announcer())
		require.False(t, FilterOwnMoves())
		require.Equal(t, uint64(99), Seed())
		require.Equal(t, zerolog.DebugLevel, LogLevel())
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("KRIEG_MAX_HYPOTHESES", "-3")
		t.Setenv("KRIEG_AGENT_RATIONALITY", "-1")
		t.Setenv("KRIEG_OPPONENT_RATIONALITY", "NaN")
		t.Setenv("KRIEG_CHECK_HINTS", "loud")
		t.Setenv("KRIEG_MOVE_CAP", "many")
		t.Setenv("LOG_LEVEL", "chatty")

		require.Equal(t, 2000, MaxHypotheses())
		require.Equal(t, 0.02, AgentRationality())
		require.Equal(t, 0.004, OpponentRationality())
		require.Equal(t, game.CheckHintDirection, CheckHints())
		require.Equal(t, 600, MoveCap())
		require.Equal(t, zerolog.InfoLevel, LogLevel())
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads the env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("KRIEG_ENSEMBLE=6\n"), 0o644))
		t.Setenv("KRIEG_ENV", path)
		t.Setenv("KRIEG_ENSEMBLE", "")
		os.Unsetenv("KRIEG_ENSEMBLE")

		require.NoError(t, Load())
		require.Equal(t, 6, Ensemble())
	})

	t.Run("missing file is fine", func(t *testing.T) {
		t.Setenv("KRIEG_ENV", filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, Load())
	})
}
