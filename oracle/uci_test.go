package oracle

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

// fakeEngine answers like Stockfish for a handful of known positions and
// like Stockfish on a finished game for anything else.
const fakeEngine = `#!/bin/sh
pos=""
while read -r line; do
  case "$line" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    position*) pos="$line" ;;
    go*)
      case "$pos" in
        *4K2R*) sleep 1; echo "info depth 1 score cp 500"; echo "bestmove h1h2" ;;
        *3r4*) echo "info depth 3 score mate 2"; echo "bestmove d1d3" ;;
        *"3QK3 b"*) echo "info depth 3 score mate -3"; echo "bestmove e8e7" ;;
        *rnbqkbnr*|*startpos*) echo "info depth 1 score cp 35"; echo "bestmove e2e4" ;;
        *) echo "info depth 0 score mate 0"; echo "bestmove (none)" ;;
      esac ;;
    quit) exit 0 ;;
  esac
done
`

func startFakeEngine(t *testing.T) *UCI {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no shell available")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(fakeEngine), 0o755))
	u, err := NewUCI(path, 3)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })
	return u
}

func TestUCIEvaluate(t *testing.T) {
	ctx := context.Background()
	u := startFakeEngine(t)

	tests := []struct {
		name string
		fen  string
		want float64
	}{
		{"centipawns", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 35},
		{"mating", "4k3/8/8/8/8/3r4/8/3QK3 w - - 0 1", MateScore - 2},
		{"being mated", "4k3/8/8/8/8/8/8/3QK3 b - - 0 1", -MateScore + 3},
		{"already mated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", -MateScore},
		{"stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, err := u.Evaluate(ctx, game.MustFEN(tc.fen))
			require.NoError(t, err)
			require.Equal(t, tc.want, score)
		})
	}
}

func TestUCICancelledSearch(t *testing.T) {
	u := startFakeEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := u.Evaluate(ctx, game.MustFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1"))
	require.ErrorIs(t, err, ErrOracleUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned search finishes before the next one is served.
	score, err := u.Evaluate(context.Background(), game.NewBoard())
	require.NoError(t, err)
	require.Equal(t, 35.0, score)
}
