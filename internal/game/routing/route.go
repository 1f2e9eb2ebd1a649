package routing

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// Reasons a Result may carry when CanAttempt is false.
const (
	ReasonNoSpec             = "no_spec"
	ReasonNoVehicle          = "no_vehicle"
	ReasonComponentMissing   = "component_missing"
	ReasonComponentDestroyed = "component_destroyed"
	ReasonNoAttributeOwner   = "no_attribute_owner"
	ReasonNoOperator         = "no_operator"
	ReasonIncapacitated      = "incapacitated"
)

// Graph is the participant graph a Spec is resolved against.
type Graph struct {
	Vehicle *vehicle.Vehicle
	// NominalComponentID is the component the caller aimed at; may be empty.
	NominalComponentID string
	// InitiatorID is the crew member who initiated the check; may be empty.
	InitiatorID string
}

// Result is the throwaway outcome of routing.
type Result struct {
	CanAttempt bool
	Component  *vehicle.Component
	Character  *character.Character
	Reason     string
}

func fail(reason string) Result { return Result{Reason: reason} }

// Route resolves spec against g. It never mutates g and draws no randomness.
//
// Postcondition: CanAttempt is false iff Reason is non-empty.
func Route(spec Spec, g Graph) Result {
	if g.Vehicle == nil {
		return fail(ReasonNoVehicle)
	}
	switch s := spec.(type) {
	case VehicleSpec:
		return routeVehicle(s, g)
	case CharacterSpec:
		if s.Test == nil {
			return fail(ReasonNoSpec)
		}
		return routeCharacter(s, g)
	default:
		return fail(ReasonNoSpec)
	}
}

func routeVehicle(s VehicleSpec, g Graph) Result {
	if s.Attribute == stat.AttributeUnknown {
		return fail(ReasonNoSpec)
	}
	v := g.Vehicle
	if vehicle.ChassisBound(s.Attribute) {
		return intact(v.PrimaryBody())
	}
	if g.NominalComponentID != "" {
		nominal := v.Component(g.NominalComponentID)
		if nominal == nil {
			return fail(ReasonComponentMissing)
		}
		if nominal.Destroyed {
			return fail(ReasonComponentDestroyed)
		}
		if _, ok := nominal.BaseValue(s.Attribute); ok {
			return Result{CanAttempt: true, Component: nominal}
		}
	}
	for _, c := range v.Components() {
		if c.Destroyed {
			continue
		}
		if _, ok := c.BaseValue(s.Attribute); ok {
			return Result{CanAttempt: true, Component: c}
		}
	}
	return fail(ReasonNoAttributeOwner)
}

func intact(c *vehicle.Component) Result {
	switch {
	case c == nil:
		return fail(ReasonComponentMissing)
	case c.Destroyed:
		return fail(ReasonComponentDestroyed)
	default:
		return Result{CanAttempt: true, Component: c}
	}
}

func routeCharacter(s CharacterSpec, g Graph) Result {
	v := g.Vehicle
	if s.RequiredComponent != vehicle.TypeUnknown {
		return routeRequired(s.RequiredComponent, g)
	}
	if g.InitiatorID != "" {
		if seat := v.SeatOf(g.InitiatorID); seat != nil {
			return seated(v, seat)
		}
	}
	pb := v.PrimaryBody()
	if pb == nil {
		return fail(ReasonNoOperator)
	}
	var drivers []*vehicle.Seat
	for _, seat := range v.Seats() {
		if seat.Controls == pb.ID && seat.Occupant != nil {
			drivers = append(drivers, seat)
		}
	}
	if len(drivers) == 0 {
		return fail(ReasonNoOperator)
	}
	return seated(v, pick(drivers, ""))
}

// routeRequired finds the crew member seated at an intact component of type
// want, preferring the initiator.
func routeRequired(want vehicle.ComponentType, g Graph) Result {
	v := g.Vehicle
	var candidates []*vehicle.Seat
	sawDestroyed := false
	for _, seat := range v.Seats() {
		c := v.Component(seat.Controls)
		if c == nil || c.Type != want || seat.Occupant == nil {
			continue
		}
		if c.Destroyed {
			sawDestroyed = true
			continue
		}
		candidates = append(candidates, seat)
	}
	if len(candidates) == 0 {
		if sawDestroyed {
			return fail(ReasonComponentDestroyed)
		}
		return fail(ReasonNoOperator)
	}
	return seated(v, pick(candidates, g.InitiatorID))
}

// pick chooses among occupied seats: the initiator when able, else the first
// able occupant. Only when every occupant is down does it return the first
// seat, which then fails as incapacitated.
func pick(seats []*vehicle.Seat, initiatorID string) *vehicle.Seat {
	if initiatorID != "" {
		for _, seat := range seats {
			if seat.Occupant.ID == initiatorID && !seat.Occupant.IsIncapacitated() {
				return seat
			}
		}
	}
	for _, seat := range seats {
		if !seat.Occupant.IsIncapacitated() {
			return seat
		}
	}
	return seats[0]
}

func seated(v *vehicle.Vehicle, seat *vehicle.Seat) Result {
	if seat.Occupant.IsIncapacitated() {
		return fail(ReasonIncapacitated)
	}
	r := Result{CanAttempt: true, Character: seat.Occupant}
	if c := v.Component(seat.Controls); c != nil && !c.Destroyed {
		r.Component = c
	}
	return r
}

// Router wraps Route with developer diagnostics.
type Router struct {
	logger *zap.Logger
}

// NewRouter creates a Router.
//
// Precondition: logger must be non-nil.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		panic("routing: NewRouter precondition violated: logger must be non-nil")
	}
	return &Router{logger: logger}
}

// Route resolves spec against g. A missing or empty spec is an authoring
// error and is reported at warn level; other failures are ordinary gameplay
// states and log at debug.
func (r *Router) Route(spec Spec, g Graph) Result {
	res := Route(spec, g)
	if res.CanAttempt {
		return res
	}
	fields := []zap.Field{zap.String("reason", res.Reason)}
	if g.Vehicle != nil {
		fields = append(fields, zap.String("vehicle", g.Vehicle.ID))
	}
	if res.Reason == ReasonNoSpec {
		r.logger.Warn("check spec has no usable payload", fields...)
	} else {
		r.logger.Debug("check cannot be attempted", fields...)
	}
	return res
}
