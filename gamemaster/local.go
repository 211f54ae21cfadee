// Package gamemaster holds the referee, the only owner of the true board.
package gamemaster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"kriegspiel/game"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
)

type Option func(*Referee)

// WithPosition starts the game from b instead of the standard position.
func WithPosition(b game.Board) Option {
	return func(r *Referee) {
		r.board = b
	}
}

func WithAnnouncer(a game.Announcer) Option {
	return func(r *Referee) {
		r.announcer = a
	}
}

// Referee arbitrates move attempts against the true board. Announcements are
// the only information about the board that leaves it, apart from Snapshot.
type Referee struct {
	mu        sync.Mutex
	board     game.Board
	announcer game.Announcer
	ply       int
	outcome   game.Outcome
	illegal   [2]int
}

func NewReferee(opts ...Option) *Referee {
	r := &Referee{board: game.NewBoard()}
	for _, opt := range opts {
		opt(r)
	}
	r.outcome = r.announcer.Terminal(r.board, r.ply)
	return r
}

// AttemptMove arbitrates m for mover. An illegal move is not an error: the
// returned announcement says so and the board is unchanged. For a legal move
// the returned announcement is the mover's copy; the other side gets Public().
func (r *Referee) AttemptMove(mover game.Color, m game.Move) (game.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome.Over() {
		return game.Announcement{}, fmt.Errorf("%s attempted %s: %w", mover, m, ErrGameOver)
	}
	if mover != r.board.SideToMove() {
		return game.Announcement{}, fmt.Errorf("%s attempted %s: %w", mover, m, ErrNotYourTurn)
	}

	next, ann := r.announcer.Resolve(r.board, m, r.ply)
	if ann.Illegal {
		r.illegal[mover]++
		log.Debug().Msgf("Referee: %s attempt %s is illegal", mover, m)
		return ann, nil
	}

	r.board = next
	r.ply++
	r.outcome = ann.Outcome
	log.Debug().Msgf("Referee: ply %d %s played %s (%s)", r.ply, mover, m, ann)
	if r.outcome.Over() {
		log.Info().Msgf("Referee: game over after %d plies: %s", r.ply, r.outcome)
	}
	return ann, nil
}

func (r *Referee) SideToMove() game.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.SideToMove()
}

// Ply is the number of moves accepted so far.
func (r *Referee) Ply() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ply
}

func (r *Referee) Outcome() game.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

func (r *Referee) Over() bool {
	return r.Outcome().Over()
}

// Winner is the side that delivered checkmate. ok is false for draws and
// unfinished games.
func (r *Referee) Winner() (c game.Color, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcome != game.Checkmate {
		return game.White, false
	}
	// The mated side is the one to move.
	return r.board.SideToMove().Other(), true
}

// IllegalAttempts is how many illegal moves c has tried.
func (r *Referee) IllegalAttempts(c game.Color) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.illegal[c]
}

// Snapshot copies the true board. Only simulated omniscient players and tests
// may use it.
func (r *Referee) Snapshot() game.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}
