// Package vehicle models the participant graph on the vehicle side: a vehicle
// is an ordered set of components plus the crew seats that operate them.
package vehicle

import (
	"fmt"

	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// Seat is a crew position that operates one component.
type Seat struct {
	ID       string
	Name     string
	Controls string // component ID
	Occupant *character.Character
}

// Vehicle is a live vehicle built from a Template.
type Vehicle struct {
	ID         string
	Name       string
	TemplateID string

	components []*Component
	seats      []*Seat
}

// Component returns the component with id, or nil.
func (v *Vehicle) Component(id string) *Component {
	for _, c := range v.components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Components returns the components in template order.
func (v *Vehicle) Components() []*Component {
	out := make([]*Component, len(v.components))
	copy(out, v.components)
	return out
}

// PrimaryBody returns the first chassis component.
//
// Postcondition: Non-nil for any Vehicle produced by Build.
func (v *Vehicle) PrimaryBody() *Component {
	for _, c := range v.components {
		if c.Type == Chassis {
			return c
		}
	}
	return nil
}

// Wrecked reports whether the primary body is destroyed.
func (v *Vehicle) Wrecked() bool {
	pb := v.PrimaryBody()
	return pb == nil || pb.Destroyed
}

// Seats returns the seats in template order.
func (v *Vehicle) Seats() []*Seat {
	out := make([]*Seat, len(v.seats))
	copy(out, v.seats)
	return out
}

// Seat returns the seat with id, or nil.
func (v *Vehicle) Seat(id string) *Seat {
	for _, s := range v.seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Board places c in the seat with seatID. A character occupies at most one
// seat; boarding again moves them.
//
// Postcondition: SeatOf(c.ID) is the named seat, or an error is returned and nothing changes.
func (v *Vehicle) Board(seatID string, c *character.Character) error {
	if c == nil {
		return fmt.Errorf("vehicle %q: cannot board a nil character", v.ID)
	}
	seat := v.Seat(seatID)
	if seat == nil {
		return fmt.Errorf("vehicle %q: unknown seat %q", v.ID, seatID)
	}
	if seat.Occupant != nil && seat.Occupant.ID != c.ID {
		return fmt.Errorf("vehicle %q: seat %q is occupied by %q", v.ID, seatID, seat.Occupant.ID)
	}
	if prev := v.SeatOf(c.ID); prev != nil {
		prev.Occupant = nil
	}
	seat.Occupant = c
	return nil
}

// SeatOf returns the seat occupied by the character with id, or nil.
func (v *Vehicle) SeatOf(characterID string) *Seat {
	for _, s := range v.seats {
		if s.Occupant != nil && s.Occupant.ID == characterID {
			return s
		}
	}
	return nil
}

// Crew returns every seated character in seat order.
func (v *Vehicle) Crew() []*character.Character {
	var out []*character.Character
	for _, s := range v.seats {
		if s.Occupant != nil {
			out = append(out, s.Occupant)
		}
	}
	return out
}

// OperatorOf returns the first able occupant of a seat controlling
// componentID. When every such occupant is incapacitated it returns the first
// of them; with no occupant it returns nil.
func (v *Vehicle) OperatorOf(componentID string) *character.Character {
	var first *character.Character
	for _, s := range v.seats {
		if s.Controls != componentID || s.Occupant == nil {
			continue
		}
		if !s.Occupant.IsIncapacitated() {
			return s.Occupant
		}
		if first == nil {
			first = s.Occupant
		}
	}
	return first
}

// AuxiliaryModifiers implements stat.AuxiliarySource: intact sibling
// components contribute their grants to components of the granted type.
// Participants that are not components of this vehicle receive nothing.
func (v *Vehicle) AuxiliaryModifiers(p stat.Participant, attr stat.Attribute) []stat.Modifier {
	target, ok := p.(*Component)
	if !ok || target.vehicle != v {
		return nil
	}
	var out []stat.Modifier
	for _, c := range v.components {
		if c == target || c.Destroyed {
			continue
		}
		for _, g := range c.grants {
			if g.To == target.Type && g.Modifier.Attribute == attr {
				out = append(out, g.Modifier)
			}
		}
	}
	return out
}
