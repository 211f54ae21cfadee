package metrics

import (
	"sync/atomic"
	"time"

	"kriegspiel/game"
)

type MoveMetric struct {
	Step     int // ply index
	Player   game.Color
	Move     game.Move
	Attempts int // including the accepted one
	Illegal  int
	Duration time.Duration
	// Hypotheses is the mover's belief size after the move, 0 for players
	// without a belief.
	Hypotheses   int
	Announcement string
}

type GameMetric struct {
	Winner          string // "white", "black" or "draw"
	Outcome         game.Outcome
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	TotalMoves      int
	IllegalAttempts int
	Recoveries      int
}

// Collector gathers the metrics of one move at a time.
type Collector interface {
	Start(step int, player game.Color)
	AddAttempt(illegal bool)
	Complete(move game.Move, hypotheses int, ann game.Announcement) MoveMetric
}

type collector struct {
	step      int
	player    game.Color
	startTime time.Time
	attempts  atomic.Int32
	illegal   atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(step int, player game.Color) {
	m.startTime = time.Now()
	m.step = step
	m.player = player
	m.attempts.Store(0)
	m.illegal.Store(0)
}

func (m *collector) AddAttempt(illegal bool) {
	m.attempts.Add(1)
	if illegal {
		m.illegal.Add(1)
	}
}

func (m *collector) Complete(move game.Move, hypotheses int, ann game.Announcement) MoveMetric {
	return MoveMetric{
		Step:         m.step,
		Player:       m.player,
		Move:         move,
		Attempts:     int(m.attempts.Load()),
		Illegal:      int(m.illegal.Load()),
		Duration:     time.Since(m.startTime),
		Hypotheses:   hypotheses,
		Announcement: ann.String(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(step int, player game.Color) {}
func (m *dummyCollector) AddAttempt(illegal bool)           {}
func (m *dummyCollector) Complete(game.Move, int, game.Announcement) MoveMetric {
	return MoveMetric{}
}
