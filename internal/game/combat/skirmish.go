package combat

import (
	"fmt"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/effect"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// Entrant is one vehicle in a skirmish with its initiative result.
type Entrant struct {
	Vehicle    *vehicle.Vehicle
	Initiative int
}

// Skirmish is the turn order of one vehicular engagement. Status effects on
// a vehicle's components and crew tick when that vehicle's turn ends.
type Skirmish struct {
	resolver *Resolver
	entrants []*Entrant
	turn     int
	// Round is the current round number, starting at 1.
	Round int
}

// NewSkirmish rolls initiative for every vehicle and orders them highest
// first. Initiative is a Handling check against the primary body; ties keep
// the order the vehicles were given in.
//
// Precondition: resolver must be non-nil.
// Postcondition: Returns an error if fewer than two vehicles are given or an
// ID repeats.
func NewSkirmish(resolver *Resolver, vehicles ...*vehicle.Vehicle) (*Skirmish, error) {
	if resolver == nil {
		panic("combat: NewSkirmish precondition violated: resolver must be non-nil")
	}
	if len(vehicles) < 2 {
		return nil, fmt.Errorf("skirmish needs at least 2 vehicles, got %d", len(vehicles))
	}
	seen := make(map[string]bool, len(vehicles))
	entrants := make([]*Entrant, 0, len(vehicles))
	for _, v := range vehicles {
		if v == nil {
			return nil, fmt.Errorf("skirmish vehicle must be non-nil")
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("vehicle %q entered twice", v.ID)
		}
		seen[v.ID] = true
		res := resolver.PerformSkillCheck(CheckRequest{
			Spec:    routing.VehicleSpec{Attribute: stat.Handling},
			Vehicle: v,
		}, 0)
		entrants = append(entrants, &Entrant{Vehicle: v, Initiative: initiative(res.Outcome)})
	}
	sortByInitiativeDesc(entrants)
	return &Skirmish{resolver: resolver, entrants: entrants, Round: 1}, nil
}

func initiative(o check.Outcome) int {
	if o.AutoFail() {
		return 0
	}
	return o.Total()
}

// Order returns a snapshot of the entrants in initiative order.
func (s *Skirmish) Order() []Entrant {
	out := make([]Entrant, len(s.entrants))
	for i, e := range s.entrants {
		out[i] = *e
	}
	return out
}

// Current returns the vehicle whose turn it is, skipping wrecks.
//
// Postcondition: Returns nil only when every vehicle is wrecked.
func (s *Skirmish) Current() *vehicle.Vehicle {
	for range s.entrants {
		v := s.entrants[s.turn].Vehicle
		if !v.Wrecked() {
			return v
		}
		s.advance()
	}
	return nil
}

// EndTurn ticks every status effect on the current vehicle's components and
// crew, then passes the turn on. It returns the instances that expired.
func (s *Skirmish) EndTurn() []*effect.Applied {
	v := s.Current()
	if v == nil {
		return nil
	}
	var expired []*effect.Applied
	for _, c := range v.Components() {
		expired = append(expired, s.resolver.TickStatusEffects(c)...)
	}
	for _, ch := range v.Crew() {
		expired = append(expired, s.resolver.TickStatusEffects(ch)...)
	}
	s.advance()
	return expired
}

func (s *Skirmish) advance() {
	s.turn = (s.turn + 1) % len(s.entrants)
	if s.turn == 0 {
		s.Round++
	}
}

// Standing returns the vehicles that are not wrecked, in initiative order.
func (s *Skirmish) Standing() []*vehicle.Vehicle {
	var out []*vehicle.Vehicle
	for _, e := range s.entrants {
		if !e.Vehicle.Wrecked() {
			out = append(out, e.Vehicle)
		}
	}
	return out
}

// Over reports whether at most one vehicle is still standing.
func (s *Skirmish) Over() bool {
	return len(s.Standing()) <= 1
}

// sortByInitiativeDesc sorts entrants in place, highest initiative first.
func sortByInitiativeDesc(entrants []*Entrant) {
	n := len(entrants)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && entrants[j].Initiative > entrants[j-1].Initiative; j-- {
			entrants[j], entrants[j-1] = entrants[j-1], entrants[j]
		}
	}
}
