package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kriegspiel/game"
)

func TestMaterial(t *testing.T) {
	ctx := context.Background()

	t.Run("start position is level", func(t *testing.T) {
		score, err := Material{}.Evaluate(ctx, game.NewBoard())
		require.NoError(t, err)
		require.Zero(t, score)
	})

	t.Run("scores for the side to move", func(t *testing.T) {
		// White is a rook up, black to move.
		b := game.MustFEN("4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
		score, err := Material{}.Evaluate(ctx, b)
		require.NoError(t, err)
		require.Equal(t, -500.0, score)
	})

	t.Run("mated side scores minus mate", func(t *testing.T) {
		b := game.MustFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
		require.Equal(t, -float64(MateScore), MaterialScore(b))
	})

	t.Run("stalemate is level", func(t *testing.T) {
		b := game.MustFEN("7k/8/6QK/8/8/8/8/8 b - - 0 1")
		require.Zero(t, MaterialScore(b))
	})
}

func TestScoreToUtility(t *testing.T) {
	require.Equal(t, 35.0, scoreToUtility(35, 0))
	require.Equal(t, float64(MateScore-2), scoreToUtility(0, 2))
	require.Equal(t, float64(-MateScore+3), scoreToUtility(0, -3))
	require.Greater(t, scoreToUtility(0, 1), scoreToUtility(0, 5), "Faster mates should score higher")
}

func TestEvaluateAll(t *testing.T) {
	boards := []game.Board{
		game.NewBoard(),
		game.MustFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1"),
		game.MustFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1"),
	}

	t.Run("keeps board order", func(t *testing.T) {
		scores, err := EvaluateAll(context.Background(), Material{}, boards, 2)
		require.NoError(t, err)
		require.Equal(t, []float64{0, 500, 900}, scores)
	})

	t.Run("returns the first error", func(t *testing.T) {
		failing := Func(func(ctx context.Context, b game.Board) (float64, error) {
			return 0, ErrOracleUnavailable
		})
		_, err := EvaluateAll(context.Background(), failing, boards, 4)
		require.ErrorIs(t, err, ErrOracleUnavailable)
	})
}

func TestRemote(t *testing.T) {
	t.Run("round trip through the handler", func(t *testing.T) {
		server := httptest.NewServer(NewHandler(Material{}))
		defer server.Close()

		remote := NewRemote(server.URL, time.Second)
		score, err := remote.Evaluate(context.Background(), game.MustFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1"))
		require.NoError(t, err)
		require.Equal(t, 500.0, score)
	})

	t.Run("server errors are unavailability", func(t *testing.T) {
		failing := Func(func(ctx context.Context, b game.Board) (float64, error) {
			return 0, errors.New("engine crashed")
		})
		server := httptest.NewServer(NewHandler(failing))
		defer server.Close()

		_, err := NewRemote(server.URL, time.Second).Evaluate(context.Background(), game.NewBoard())
		require.ErrorIs(t, err, ErrOracleUnavailable)
		require.Contains(t, err.Error(), "503")
	})

	t.Run("unreachable server is unavailability", func(t *testing.T) {
		server := httptest.NewServer(NewHandler(Material{}))
		url := server.URL
		server.Close()

		_, err := NewRemote(url, time.Second).Evaluate(context.Background(), game.NewBoard())
		require.ErrorIs(t, err, ErrOracleUnavailable)
	})

	t.Run("handler rejects bad positions", func(t *testing.T) {
		handler := NewHandler(Material{})
		req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"fen":"8/8/8/8/8/8/8/8 w - - 0 1"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUCIUnavailable(t *testing.T) {
	_, err := NewUCI(filepath.Join(t.TempDir(), "no-such-engine"), 8)
	require.ErrorIs(t, err, ErrOracleUnavailable)
}
