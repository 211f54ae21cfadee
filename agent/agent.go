// Package agent holds the players the controller can seat: the Bayesian
// belief-state agent and simulated opponents.
package agent

import (
	"context"
	"errors"

	"kriegspiel/game"
)

var ErrNoCandidates = errors.New("no candidate moves")

type Agent interface {
	Color() game.Color
	// ChooseMove proposes the next attempt. After an illegal announcement
	// the same turn continues and ChooseMove is called again.
	ChooseMove(ctx context.Context) (game.Move, error)
	// Observe receives the mover's own announcements in full and the
	// opponent's as their public copy.
	Observe(ann game.Announcement) error
}
