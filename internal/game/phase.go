package game

import (
	"fmt"
	"strings"
)

// Phase is a step of the hand state machine
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// String returns the phase name
func (p Phase) String() string {
	return string(p)
}

// Betting reports whether players may act in this phase
func (p Phase) Betting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	default:
		return false
	}
}

// Action is a player decision
type Action string

const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
)

// String returns the action name
func (a Action) String() string {
	return string(a)
}

// ParseAction converts a client supplied action name
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Fold, Check, Call, Raise:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}
