package game

import (
	"strings"
)

// Actor is relative to whoever receives the announcement.
type Actor uint8

const (
	Self Actor = iota
	Opponent
)

func (a Actor) String() string {
	if a == Self {
		return "self"
	}
	return "opponent"
}

type Category uint8

const (
	Quiet Category = iota
	Capture
	Check
	Illegal
)

func (c Category) String() string {
	switch c {
	case Capture:
		return "capture"
	case Check:
		return "check"
	case Illegal:
		return "illegal"
	}
	return "quiet"
}

// CheckSet is the set of directions a check comes from. Under CheckHintNone
// every check is reported as CheckAny.
type CheckSet uint8

const (
	CheckVertical CheckSet = 1 << iota
	CheckHorizontal
	CheckLongDiagonal
	CheckShortDiagonal
	CheckKnight
	CheckAny
)

var checkNames = []struct {
	hint CheckSet
	name string
}{
	{CheckVertical, "check on the vertical"},
	{CheckHorizontal, "check on the horizontal"},
	{CheckLongDiagonal, "check on the long diagonal"},
	{CheckShortDiagonal, "check on the short diagonal"},
	{CheckKnight, "check by a knight"},
	{CheckAny, "check"},
}

func (c CheckSet) String() string {
	var parts []string
	for _, cn := range checkNames {
		if c&cn.hint != 0 {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, ", ")
}

type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	DrawByRepetition
	DrawByMoveCap
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByRepetition:
		return "draw by repetition"
	case DrawByMoveCap:
		return "draw by move cap"
	}
	return "ongoing"
}

func (o Outcome) Over() bool { return o != Ongoing }

// Announcement is what the referee says about one attempted move. The mover's
// copy carries Move; Public strips it for the other side. Apart from
// CaptureSquare no square of the move is ever disclosed.
type Announcement struct {
	Actor         Actor
	Turn          int // ply index of the attempt, 0 for White's first move
	Illegal       bool
	Capture       bool
	CaptureSquare Square
	CapturedPawn  bool
	Checks        CheckSet
	Outcome       Outcome
	Move          Move
}

// Category is the primary category: illegal, then capture, then check.
func (a Announcement) Category() Category {
	switch {
	case a.Illegal:
		return Illegal
	case a.Capture:
		return Capture
	case a.Checks != 0:
		return Check
	}
	return Quiet
}

// Public is the copy the non-moving side receives.
func (a Announcement) Public() Announcement {
	p := a
	p.Actor = Opponent
	p.Move = Move{}
	return p
}

// Matches compares the publicly visible payload, ignoring actor, turn and
// move.
func (a Announcement) Matches(o Announcement) bool {
	return a.Illegal == o.Illegal &&
		a.Capture == o.Capture &&
		(!a.Capture || (a.CaptureSquare == o.CaptureSquare && a.CapturedPawn == o.CapturedPawn)) &&
		a.Checks == o.Checks &&
		a.Outcome == o.Outcome
}

func (a Announcement) String() string {
	if a.Illegal {
		return "illegal"
	}
	var parts []string
	if a.Capture {
		if a.CapturedPawn {
			parts = append(parts, "pawn gone on "+a.CaptureSquare.String())
		} else {
			parts = append(parts, "piece gone on "+a.CaptureSquare.String())
		}
	}
	if a.Checks != 0 {
		parts = append(parts, a.Checks.String())
	}
	if a.Outcome.Over() {
		parts = append(parts, a.Outcome.String())
	}
	if len(parts) == 0 {
		return "quiet"
	}
	return strings.Join(parts, ", ")
}
