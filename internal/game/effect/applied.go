package effect

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// State is the lifecycle position of an applied effect.
type State int

const (
	StateApplying State = iota
	StateActive
	StateRemoving
	StateRemoved
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateApplying:
		return "applying"
	case StateActive:
		return "active"
	case StateRemoving:
		return "removing"
	default:
		return "removed"
	}
}

// Applied is one runtime instance of a Definition on a target.
type Applied struct {
	ID        string
	Def       *Definition
	Target    Target
	ApplierID string
	// TurnsRemaining is Indefinite (-1) for effects that never expire.
	TurnsRemaining int

	state   State
	created []stat.Modifier
}

func newApplied(def *Definition, target Target, applierID string) *Applied {
	return &Applied{
		ID:             uuid.NewString(),
		Def:            def,
		Target:         target,
		ApplierID:      applierID,
		TurnsRemaining: def.DurationTurns,
		state:          StateApplying,
	}
}

// State returns the lifecycle state.
func (a *Applied) State() State { return a.state }

// IsActive reports whether the instance is in the Active state.
func (a *Applied) IsActive() bool { return a.state == StateActive }

// Created returns a copy of the modifiers this instance attached.
// It is empty once the instance has been removed.
func (a *Applied) Created() []stat.Modifier {
	out := make([]stat.Modifier, len(a.created))
	copy(out, a.created)
	return out
}
