package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"kriegspiel/game"
)

type evaluateRequest struct {
	FEN string `json:"fen"`
}

type evaluateResponse struct {
	Score float64 `json:"score"`
}

// Remote is an oracle served over HTTP by NewHandler.
type Remote struct {
	url    string
	client *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		url:    strings.TrimSuffix(url, "/") + "/evaluate",
		client: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Evaluate(ctx context.Context, b game.Board) (float64, error) {
	body, err := json.Marshal(evaluateRequest{FEN: b.FEN()})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: status %d: %s", ErrOracleUnavailable, resp.StatusCode, strings.TrimSpace(string(out)))
	}
	var er evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return 0, fmt.Errorf("%w: decode: %w", ErrOracleUnavailable, err)
	}
	return er.Score, nil
}

// NewHandler serves o at POST /evaluate.
func NewHandler(o Oracle) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /evaluate", func(w http.ResponseWriter, r *http.Request) {
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		b, err := game.ParseFEN(req.FEN)
		if err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		score, err := o.Evaluate(r.Context(), b)
		if err != nil {
			log.Error().Err(err).Msgf("Oracle: evaluate %s", req.FEN)
			http.Error(w, "evaluate: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(evaluateResponse{Score: score}); err != nil {
			http.Error(w, "failed to encode score: "+err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
