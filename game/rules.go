package game

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"
)

// CheckPolicy sets how much the referee says about a check.
type CheckPolicy uint8

const (
	// CheckHintDirection names the line the check comes from: vertical,
	// horizontal, long diagonal, short diagonal or knight.
	CheckHintDirection CheckPolicy = iota
	// CheckHintNone announces a bare check.
	CheckHintNone
)

func (p CheckPolicy) String() string {
	if p == CheckHintNone {
		return "none"
	}
	return "direction"
}

func ParseCheckPolicy(text string) (CheckPolicy, error) {
	switch text {
	case "", "direction":
		return CheckHintDirection, nil
	case "none":
		return CheckHintNone, nil
	}
	return CheckHintDirection, fmt.Errorf("unknown check hint policy %q", text)
}

// Announcer turns a move attempt into the referee's announcement. The referee
// and every belief state use the same Announcer, so a hypothesis is filtered
// by exactly the rules that produced the announcement.
type Announcer struct {
	Checks CheckPolicy
	// MoveCap is the ply count at which the game is drawn. Zero disables it.
	MoveCap int
}

// Transition is one legal move out of a board with its result.
type Transition struct {
	Move         Move
	Board        Board
	Announcement Announcement
}

// Resolve attempts m on b as ply number ply. An illegal attempt returns b
// unchanged.
func (a Announcer) Resolve(b Board, m Move, ply int) (Board, Announcement) {
	dm, ok := b.find(m)
	if !ok {
		return b, Announcement{Actor: Self, Turn: ply, Illegal: true, Move: m}
	}
	next, ann := a.apply(b, dm, ply)
	ann.Outcome = a.outcome(next, ply)
	return next, ann
}

// Successors lists every legal move out of b with the board and announcement
// it produces.
func (a Announcer) Successors(b Board, ply int) []Transition {
	dms := b.dragonMoves()
	out := make([]Transition, 0, len(dms))
	for _, dm := range dms {
		next, ann := a.apply(b, dm, ply)
		ann.Outcome = a.outcome(next, ply)
		out = append(out, Transition{Move: ann.Move, Board: next, Announcement: ann})
	}
	return out
}

// Consistent is Successors restricted to moves whose public announcement
// matches want. The termination outcome, the costly part, is only computed
// for moves that already agree on capture and check.
func (a Announcer) Consistent(b Board, ply int, want Announcement) []Transition {
	if want.Illegal {
		return nil
	}
	var out []Transition
	for _, dm := range b.dragonMoves() {
		if _, capture := b.capturedSquare(dm); capture != want.Capture {
			continue
		}
		next, ann := a.apply(b, dm, ply)
		if ann.Capture != want.Capture || ann.Checks != want.Checks {
			continue
		}
		if ann.Capture && (ann.CaptureSquare != want.CaptureSquare || ann.CapturedPawn != want.CapturedPawn) {
			continue
		}
		ann.Outcome = a.outcome(next, ply)
		if ann.Outcome != want.Outcome {
			continue
		}
		out = append(out, Transition{Move: ann.Move, Board: next, Announcement: ann})
	}
	return out
}

// apply plays a legal move and fills in everything but the outcome.
func (a Announcer) apply(b Board, dm dragontoothmg.Move, ply int) (Board, Announcement) {
	mover := b.SideToMove()
	ann := Announcement{Actor: Self, Turn: ply, Move: fromDragon(dm), CaptureSquare: NoSquare}

	if sq, ok := b.capturedSquare(dm); ok {
		captured, _ := b.PieceAt(sq)
		ann.Capture = true
		ann.CaptureSquare = sq
		ann.CapturedPawn = captured.Type == Pawn
	}

	next := b.play(dm)
	if checks := next.checkers(mover); checks != 0 {
		if a.Checks == CheckHintNone {
			ann.Checks = CheckAny
		} else {
			ann.Checks = checks
		}
	}
	return next, ann
}

// Terminal reports how the game stands on b after plies half-moves.
func (a Announcer) Terminal(b Board, plies int) Outcome {
	return a.outcome(b, plies-1)
}

// outcome checks b, reached by the move with index ply, for the end of the
// game. Checkmate takes precedence over the draws.
func (a Announcer) outcome(b Board, ply int) Outcome {
	if !b.HasLegalMoves() {
		if b.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if b.RepetitionCount() >= 3 {
		return DrawByRepetition
	}
	if a.MoveCap > 0 && ply+1 >= a.MoveCap {
		return DrawByMoveCap
	}
	return Ongoing
}
