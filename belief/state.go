// Package belief tracks what one player believes about the hidden true board:
// a capped, weighted set of full boards consistent with every announcement
// seen so far.
package belief

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/sampleuv"

	"kriegspiel/game"
	"kriegspiel/prior"
	"kriegspiel/utils"
)

const DefaultMaxHypotheses = 2000

// ErrEmptyHypothesisSet is the reason logged when filtering leaves nothing.
// Observe recovers from it and never returns it.
var ErrEmptyHypothesisSet = errors.New("empty hypothesis set")

var ErrMissingMove = errors.New("own announcement without a move")

type Hypothesis struct {
	Board  game.Board
	Weight float64
}

// Likelihood scores the opponent moves out of parent. It returns one
// non-negative factor per move and is called from several goroutines at once.
type Likelihood func(parent game.Board, moves []game.Move) []float64

type Stats struct {
	Observations int
	// Recoveries counts opponent moves after which no hypothesis matched.
	Recoveries int
	// Successors counts expanded boards that matched an announcement.
	Successors int
	// Merged counts successors folded into an identical board.
	Merged int
	// Pruned counts hypotheses dropped by the cap.
	Pruned int
	// Rejected counts hypotheses dropped by the agent's own moves.
	Rejected int
}

type Option func(*State)

func WithMaxHypotheses(k int) Option {
	return func(s *State) {
		s.maxHypotheses = k
	}
}

func WithWorkers(n int) Option {
	return func(s *State) {
		s.workers = n
	}
}

func WithRand(src rand.Source) Option {
	return func(s *State) {
		s.src = src
	}
}

func WithPrior(t *prior.Table) Option {
	return func(s *State) {
		s.prior = t
	}
}

func WithAnnouncer(a game.Announcer) Option {
	return func(s *State) {
		s.announcer = a
	}
}

// WithLikelihood multiplies each successor's weight by an opponent model.
func WithLikelihood(l Likelihood) Option {
	return func(s *State) {
		s.likelihood = l
	}
}

// WithOwnMoveFilter drops hypotheses on which the agent's accepted move would
// have been illegal or announced differently.
func WithOwnMoveFilter(on bool) Option {
	return func(s *State) {
		s.filterOwn = on
	}
}

// State is one player's belief about the true board. It is not safe for
// concurrent use; the parallelism is internal to Observe.
type State struct {
	color         game.Color
	announcer     game.Announcer
	prior         *prior.Table
	likelihood    Likelihood
	maxHypotheses int
	workers       int
	filterOwn     bool
	src           rand.Source

	hyps  []Hypothesis
	stats Stats
}

// New creates the belief of the player with the given color. Call
// Initialize before observing.
func New(color game.Color, opts ...Option) *State {
	s := &State{
		color:         color,
		prior:         prior.Uniform(),
		maxHypotheses: DefaultMaxHypotheses,
		workers:       runtime.NumCPU(),
		src:           rand.NewPCG(1, 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Initialize resets the belief to the single known start board.
func (s *State) Initialize(start game.Board) {
	s.hyps = []Hypothesis{{Board: start, Weight: 1}}
	s.stats = Stats{}
}

func (s *State) Color() game.Color {
	return s.color
}

func (s *State) Len() int {
	return len(s.hyps)
}

func (s *State) Stats() Stats {
	return s.stats
}

// Hypotheses returns a copy of the current set.
func (s *State) Hypotheses() []Hypothesis {
	return append([]Hypothesis(nil), s.hyps...)
}

// MostProbable is the heaviest hypothesis, the earliest on ties. It is the
// zero Board before Initialize.
func (s *State) MostProbable() game.Board {
	if len(s.hyps) == 0 {
		return game.Board{}
	}
	best := 0
	for i, h := range s.hyps {
		if h.Weight > s.hyps[best].Weight {
			best = i
		}
	}
	return s.hyps[best].Board
}

// Sample draws up to n distinct hypotheses by weight, without replacement.
func (s *State) Sample(n int) []game.Board {
	if n <= 0 || len(s.hyps) == 0 {
		return nil
	}
	weights := lo.Map(s.hyps, func(h Hypothesis, _ int) float64 { return h.Weight })
	w := sampleuv.NewWeighted(weights, s.src)
	out := make([]game.Board, 0, min(n, len(s.hyps)))
	for len(out) < n {
		i, ok := w.Take()
		if !ok {
			break
		}
		out = append(out, s.hyps[i].Board)
	}
	return out
}

// Observe folds one announcement into the belief. Inconsistencies are
// recovered from and logged; an error means the announcement itself was
// unusable.
func (s *State) Observe(ann game.Announcement) error {
	if len(s.hyps) == 0 {
		return fmt.Errorf("observe %s: belief not initialised", ann)
	}
	s.stats.Observations++
	switch {
	case ann.Actor == game.Opponent && ann.Illegal:
		// Nothing changed on the board.
		return nil
	case ann.Actor == game.Opponent:
		s.observeOpponent(ann)
	case ann.Move == (game.Move{}):
		return fmt.Errorf("observe %s: %w", ann, ErrMissingMove)
	case ann.Illegal:
		s.observeIllegalAttempt(ann.Move)
	default:
		s.observeOwnMove(ann)
	}
	return nil
}

// candidate is an expanded successor before merging.
type candidate struct {
	board  game.Board
	weight float64
	// coarse is set during recovery when the successor agrees with the
	// announcement's category.
	coarse bool
}

func (s *State) observeOpponent(ann game.Announcement) {
	want := ann.Public()
	next := s.expand(func(h Hypothesis) []candidate {
		ts := s.announcer.Consistent(h.Board, ann.Turn, want)
		if len(ts) == 0 {
			return nil
		}
		var extra []float64
		if s.likelihood != nil {
			extra = s.likelihood(h.Board, lo.Map(ts, func(t game.Transition, _ int) game.Move { return t.Move }))
		}
		out := make([]candidate, len(ts))
		for i, t := range ts {
			w := h.Weight * s.prior.MoveLikelihood(h.Board, t.Move)
			if extra != nil {
				w *= extra[i]
			}
			out[i] = candidate{board: t.Board, weight: w}
		}
		return out
	})
	s.stats.Successors += len(next)

	if len(next) == 0 {
		next = s.recover(ann)
		s.stats.Recoveries++
		log.Warn().Err(ErrEmptyHypothesisSet).Msgf("Belief %s: no hypothesis explains %q at ply %d, recovered %d", s.color, want, ann.Turn, len(next))
		if len(next) == 0 {
			return
		}
	}
	s.commit(next)
}

// recover widens the previous generation by one opponent move with prior
// weights only. Successors must agree with the coarse category and capture
// square; if none do, every successor is kept.
func (s *State) recover(ann game.Announcement) []candidate {
	all := s.expand(func(h Hypothesis) []candidate {
		ts := s.announcer.Successors(h.Board, ann.Turn)
		out := make([]candidate, len(ts))
		for i, t := range ts {
			out[i] = candidate{
				board:  t.Board,
				weight: s.prior.MoveLikelihood(h.Board, t.Move),
				coarse: t.Announcement.Category() == ann.Category() &&
					(!ann.Capture || t.Announcement.CaptureSquare == ann.CaptureSquare),
			}
		}
		return out
	})
	if loose := lo.Filter(all, func(c candidate, _ int) bool { return c.coarse }); len(loose) > 0 {
		return loose
	}
	return all
}

// expand runs f over every hypothesis on the worker pool. Each worker owns a
// contiguous chunk and its own output slice; results keep hypothesis order.
func (s *State) expand(f func(Hypothesis) []candidate) []candidate {
	chunks := lo.Chunk(s.hyps, max(1, (len(s.hyps)+s.workers-1)/s.workers))
	results := make([][]candidate, len(chunks))
	g := errgroup.Group{}
	for i, chunk := range chunks {
		g.Go(func() error {
			var out []candidate
			for _, h := range chunk {
				out = append(out, f(h)...)
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return lo.Flatten(results)
}

// commit merges identical boards, normalises and applies the cap.
func (s *State) commit(cs []candidate) {
	merged := make([]Hypothesis, 0, len(cs))
	byHash := make(map[uint64][]int, len(cs))
	for _, c := range cs {
		h := c.board.Hash()
		dup := false
		for _, i := range byHash[h] {
			if merged[i].Board.Identical(c.board) {
				merged[i].Weight += c.weight
				dup = true
				break
			}
		}
		if dup {
			s.stats.Merged++
			continue
		}
		byHash[h] = append(byHash[h], len(merged))
		merged = append(merged, Hypothesis{Board: c.board, Weight: c.weight})
	}

	s.normalize(merged)
	kept, pruned := topK(merged, s.maxHypotheses)
	if pruned > 0 {
		s.stats.Pruned += pruned
		s.normalize(kept)
		log.Debug().Msgf("Belief %s: pruned %d of %d hypotheses", s.color, pruned, len(merged))
	}
	s.hyps = kept
}

func (s *State) normalize(hyps []Hypothesis) {
	weights := lo.Map(hyps, func(h Hypothesis, _ int) float64 { return h.Weight })
	if !utils.Normalize(weights) {
		log.Warn().Msgf("Belief %s: %d hypotheses carry no weight, using uniform weights", s.color, len(hyps))
	}
	for i := range hyps {
		hyps[i].Weight = weights[i]
	}
}

// observeOwnMove moves the agent's piece on every hypothesis. Without the
// own-move filter this keeps the count and the weights exactly.
func (s *State) observeOwnMove(ann game.Announcement) {
	if s.filterOwn {
		if kept := s.filterOwnMove(ann); len(kept) > 0 {
			s.stats.Rejected += len(s.hyps) - len(kept)
			s.hyps = kept
			s.normalize(s.hyps)
			return
		}
		log.Warn().Msgf("Belief %s: no hypothesis allows %s as announced, relabelling all", s.color, ann.Move)
	}

	next := make([]Hypothesis, 0, len(s.hyps))
	for _, h := range s.hyps {
		b, err := h.Board.Relabel(ann.Move)
		if err != nil {
			log.Debug().Err(err).Msgf("Belief %s: dropping hypothesis", s.color)
			continue
		}
		next = append(next, Hypothesis{Board: b, Weight: h.Weight})
	}
	if len(next) == 0 {
		log.Warn().Msgf("Belief %s: own move %s fits no hypothesis, belief unchanged", s.color, ann.Move)
		return
	}
	if len(next) < len(s.hyps) {
		s.stats.Rejected += len(s.hyps) - len(next)
		s.normalize(next)
	}
	s.hyps = next
}

func (s *State) filterOwnMove(ann game.Announcement) []Hypothesis {
	var kept []Hypothesis
	for _, h := range s.hyps {
		b, predicted := s.announcer.Resolve(h.Board, ann.Move, ann.Turn)
		if predicted.Illegal || !predicted.Matches(ann) {
			continue
		}
		kept = append(kept, Hypothesis{Board: b, Weight: h.Weight})
	}
	return kept
}

// observeIllegalAttempt keeps the hypotheses on which m is illegal too.
func (s *State) observeIllegalAttempt(m game.Move) {
	kept := lo.Filter(s.hyps, func(h Hypothesis, _ int) bool { return !h.Board.IsLegal(m) })
	if len(kept) == 0 {
		log.Warn().Msgf("Belief %s: %s is legal on every hypothesis, belief unchanged", s.color, m)
		return
	}
	s.stats.Rejected += len(s.hyps) - len(kept)
	s.hyps = kept
	s.normalize(s.hyps)
}
