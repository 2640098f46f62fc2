package agents

import (
	"fmt"
	"time"
)

// StepKind is the type of an atomic step
type StepKind int

const (
	StepGoTo StepKind = iota
	StepInteract
	StepChop
	StepWait
	StepTake
)

func (k StepKind) String() string {
	switch k {
	case StepGoTo:
		return "go_to"
	case StepInteract:
		return "interact"
	case StepChop:
		return "chop"
	case StepWait:
		return "wait"
	case StepTake:
		return "take"
	default:
		return fmt.Sprintf("step(%d)", int(k))
	}
}

// Step is one atomic unit of work. Station is -1 when the step has no
// target; Deadline only applies to waits.
type Step struct {
	Kind     StepKind
	Station  int
	Deadline time.Duration
}

func (s Step) String() string {
	if s.Kind == StepWait {
		return fmt.Sprintf("wait until %s", s.Deadline)
	}
	return fmt.Sprintf("%s %d", s.Kind, s.Station)
}

// GoTo walks to a station's anchor
func GoTo(station int) Step {
	return Step{Kind: StepGoTo, Station: station}
}

// Interact uses a station
func Interact(station int) Step {
	return Step{Kind: StepInteract, Station: station}
}

// Chop chops on a board
func Chop(station int) Step {
	return Step{Kind: StepChop, Station: station}
}

// Take lifts the last item off a partial build on the assembly counter
func Take(station int) Step {
	return Step{Kind: StepTake, Station: station}
}

// Wait pauses until the simulation clock reaches deadline
func Wait(deadline time.Duration) Step {
	return Step{Kind: StepWait, Station: -1, Deadline: deadline}
}

// Queue is a FIFO of pending steps
type Queue struct {
	steps []Step
}

// Push appends steps
func (q *Queue) Push(steps ...Step) {
	q.steps = append(q.steps, steps...)
}

// Peek returns the head step
func (q *Queue) Peek() (Step, bool) {
	if len(q.steps) == 0 {
		return Step{}, false
	}
	return q.steps[0], true
}

// Pop drops the head step
func (q *Queue) Pop() {
	if len(q.steps) > 0 {
		q.steps = q.steps[1:]
	}
}

// Reset replaces the queue contents
func (q *Queue) Reset(steps ...Step) {
	q.steps = append([]Step(nil), steps...)
}

// Clear empties the queue
func (q *Queue) Clear() {
	q.steps = nil
}

// Len returns the number of pending steps
func (q *Queue) Len() int {
	return len(q.steps)
}

// Steps returns a copy of the pending steps
func (q *Queue) Steps() []Step {
	return append([]Step(nil), q.steps...)
}
