package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog/log"

	"kriegspiel/game"
)

// UCI scores boards with an external engine such as Stockfish. Searches are
// serialised; the engine process handles one position at a time.
type UCI struct {
	mu     sync.Mutex
	engine *uci.Engine
	depth  int
}

// NewUCI starts the engine binary at path and searches to the given depth.
func NewUCI(path string, depth int) (*UCI, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w: %w", path, ErrOracleUnavailable, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("init engine %s: %w: %w", path, ErrOracleUnavailable, err)
	}
	log.Info().Msgf("Oracle: started UCI engine %s at depth %d", path, depth)
	return &UCI{engine: eng, depth: depth}, nil
}

// Evaluate scores b with the engine. Mated and stalemated boards are scored
// locally: engines answer them with "bestmove (none)", which is not a move.
// A cancelled ctx ends the wait but not the search; the engine finishes it
// before serving the next call.
func (u *UCI) Evaluate(ctx context.Context, b game.Board) (float64, error) {
	if !b.HasLegalMoves() {
		return MaterialScore(b), nil
	}
	fen, err := chess.FEN(b.FEN())
	if err != nil {
		return 0, fmt.Errorf("convert %s: %w", b.FEN(), err)
	}
	pos := chess.NewGame(fen).Position()

	type result struct {
		score float64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.engine == nil {
			done <- result{err: fmt.Errorf("engine closed: %w", ErrOracleUnavailable)}
			return
		}
		if err := u.engine.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{Depth: u.depth}); err != nil {
			done <- result{err: fmt.Errorf("search %s: %w: %w", b.FEN(), ErrOracleUnavailable, err)}
			return
		}
		score := u.engine.SearchResults().Info.Score
		done <- result{score: scoreToUtility(score.CP, score.Mate)}
	}()

	select {
	case r := <-done:
		return r.score, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("search %s: %w: %w", b.FEN(), ErrOracleUnavailable, ctx.Err())
	}
}

// scoreToUtility maps a UCI score to centipawns; faster mates score higher.
func scoreToUtility(cp, mate int) float64 {
	switch {
	case mate > 0:
		return float64(MateScore - mate)
	case mate < 0:
		return float64(-MateScore - mate)
	}
	return float64(cp)
}

func (u *UCI) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.engine == nil {
		return nil
	}
	err := u.engine.Close()
	u.engine = nil
	return err
}
