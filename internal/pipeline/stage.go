package pipeline

import (
	"errors"
	"fmt"
)

// Stage is a step of the per-pose reconstruction cycle.
type Stage int

const (
	Idle Stage = iota
	Capturing
	Reprojecting
	Classifying
	Triangulating
	Accumulating
)

var stageNames = [...]string{
	Idle:          "idle",
	Capturing:     "capturing",
	Reprojecting:  "reprojecting",
	Classifying:   "classifying",
	Triangulating: "triangulating",
	Accumulating:  "accumulating",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// next lists the only legal successor of each stage.
var next = map[Stage]Stage{
	Idle:          Capturing,
	Capturing:     Reprojecting,
	Reprojecting:  Classifying,
	Classifying:   Triangulating,
	Triangulating: Accumulating,
	Accumulating:  Idle,
}

// ErrTransition is returned for a stage change the cycle does not allow.
var ErrTransition = errors.New("illegal stage transition")

// StageError reports the stage in which a step failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// machine tracks the current stage and notifies an observer on every change.
type machine struct {
	current Stage
	observe func(from, to Stage)
}

// Current returns the current stage.
func (m *machine) Current() Stage {
	return m.current
}

// Change moves to to, which must be the successor of the current stage.
func (m *machine) Change(to Stage) error {
	if next[m.current] != to {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.current, to)
	}
	m.set(to)
	return nil
}

// Reset returns to Idle from any stage.
func (m *machine) Reset() {
	if m.current != Idle {
		m.set(Idle)
	}
}

func (m *machine) set(to Stage) {
	from := m.current
	m.current = to
	if m.observe != nil {
		m.observe(from, to)
	}
}
