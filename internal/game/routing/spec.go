// Package routing resolves an abstract check description against a live
// vehicle to find the component and crew member that actually roll.
package routing

import (
	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// Spec describes what a check or saving throw tests. Only VehicleSpec and
// CharacterSpec implement it.
type Spec interface {
	// Label names the tested quantity for logs and events.
	Label() string
	isSpec()
}

// VehicleSpec tests an aggregated attribute of a vehicle component.
type VehicleSpec struct {
	Attribute stat.Attribute
}

// Label returns the attribute name.
func (s VehicleSpec) Label() string { return s.Attribute.String() }

func (VehicleSpec) isSpec() {}

// CharacterSpec tests a crew member's skill or ability. When
// RequiredComponent is set only a crew member seated at a component of that
// type may attempt it.
type CharacterSpec struct {
	Test              character.Test
	RequiredComponent vehicle.ComponentType
}

// Label returns the skill or ability name.
func (s CharacterSpec) Label() string {
	if s.Test == nil {
		return "unknown"
	}
	return s.Test.Label()
}

func (CharacterSpec) isSpec() {}
