package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"kriegspiel/agent"
	"kriegspiel/belief"
	"kriegspiel/experiments/metrics"
	"kriegspiel/game"
	"kriegspiel/gamemaster"
)

const DefaultMaxAttempts = 64

var ErrAttemptsExhausted = errors.New("too many illegal attempts")

type Option func(*Controller)

// WithMaxAttempts bounds the attempts a player gets for one move.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		c.maxAttempts = n
	}
}

func WithCollector(m metrics.Collector) Option {
	return func(c *Controller) {
		c.collector = m
	}
}

// Controller runs a game between two players through a referee.
type Controller struct {
	referee     *gamemaster.Referee
	agents      [2]agent.Agent
	maxAttempts int
	collector   metrics.Collector
}

type Result struct {
	Outcome   game.Outcome
	Winner    game.Color
	HasWinner bool
	Plies     int
	Moves     []metrics.MoveMetric
}

// WinnerName is "white", "black" or "draw".
func (r Result) WinnerName() string {
	if !r.HasWinner {
		return "draw"
	}
	return r.Winner.String()
}

type believer interface {
	Belief() *belief.State
}

func NewController(r *gamemaster.Referee, white, black agent.Agent, opts ...Option) (*Controller, error) {
	if white.Color() != game.White || black.Color() != game.Black {
		return nil, fmt.Errorf("players seated as %s and %s", white.Color(), black.Color())
	}
	c := &Controller{
		referee:     r,
		agents:      [2]agent.Agent{white, black},
		maxAttempts: DefaultMaxAttempts,
		collector:   metrics.NewDummyCollector(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run plays until the referee reports an outcome.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	var moves []metrics.MoveMetric

	log.Info().Msgf("%s is starting", c.referee.SideToMove())

	for !c.referee.Over() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		mover := c.referee.SideToMove()
		ply := c.referee.Ply()

		c.collector.Start(ply, mover)
		move, ann, err := c.turn(ctx, mover)
		if err != nil {
			return Result{}, fmt.Errorf("ply %d: %w", ply, err)
		}
		moves = append(moves, c.collector.Complete(move, c.hypotheses(mover), ann))
	}

	winner, ok := c.referee.Winner()
	result := Result{
		Outcome:   c.referee.Outcome(),
		Winner:    winner,
		HasWinner: ok,
		Plies:     c.referee.Ply(),
		Moves:     moves,
	}
	log.Info().Msgf("game over after %d plies: %s, winner %s", result.Plies, result.Outcome, result.WinnerName())
	return result, nil
}

// turn asks the mover for moves until one is accepted. Both players observe
// the accepted move, the mover privately and the other side publicly.
func (c *Controller) turn(ctx context.Context, mover game.Color) (game.Move, game.Announcement, error) {
	player, other := c.agents[mover], c.agents[mover.Other()]
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		move, err := player.ChooseMove(ctx)
		if err != nil {
			return game.Move{}, game.Announcement{}, err
		}
		ann, err := c.referee.AttemptMove(mover, move)
		if err != nil {
			return game.Move{}, game.Announcement{}, err
		}
		c.collector.AddAttempt(ann.Illegal)
		if err := player.Observe(ann); err != nil {
			return game.Move{}, game.Announcement{}, err
		}
		if ann.Illegal {
			log.Debug().Msgf("%s attempt %d: %s refused", mover, attempt, move)
			continue
		}
		if err := other.Observe(ann.Public()); err != nil {
			return game.Move{}, game.Announcement{}, err
		}
		log.Debug().Msgf("%s played %s: %s", mover, move, ann)
		return move, ann, nil
	}
	return game.Move{}, game.Announcement{}, fmt.Errorf("%s after %d attempts: %w", mover, c.maxAttempts, ErrAttemptsExhausted)
}

func (c *Controller) hypotheses(color game.Color) int {
	if b, ok := c.agents[color].(believer); ok {
		return b.Belief().Len()
	}
	return 0
}
