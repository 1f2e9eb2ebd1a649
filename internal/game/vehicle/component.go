package vehicle

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// ComponentType classifies a vehicle part. The zero value is invalid.
type ComponentType int

const (
	TypeUnknown ComponentType = iota
	Chassis
	Engine
	Weapon
	Turret
	Plating
	PowerPlant
	Sensor
)

var typeNames = [...]string{"unknown", "chassis", "engine", "weapon", "turret", "plating", "power_plant", "sensor"}

// String returns the snake_case type name.
func (t ComponentType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// ParseComponentType maps a type name to its ComponentType.
func ParseComponentType(s string) (ComponentType, error) {
	for i, n := range typeNames {
		if i > 0 && n == s {
			return ComponentType(i), nil
		}
	}
	return TypeUnknown, fmt.Errorf("vehicle: unknown component type %q", s)
}

// UnmarshalYAML decodes a component type from its name.
func (t *ComponentType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseComponentType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ChassisBound reports whether attr belongs to the vehicle as a whole and is
// therefore always read from the primary body.
func ChassisBound(attr stat.Attribute) bool {
	switch attr {
	case stat.Mobility, stat.Speed, stat.Handling:
		return true
	default:
		return false
	}
}

// Grant is an equipment bonus a component confers on its siblings of a given type.
type Grant struct {
	Modifier stat.Modifier
	To       ComponentType
}

// Component is one mutable part of a live vehicle.
type Component struct {
	ID        string
	Name      string
	Type      ComponentType
	MaxHealth int
	Health    int
	MaxEnergy int
	Energy    int
	Destroyed bool

	base        map[stat.Attribute]float64
	resistances map[string]damage.Resistance
	weapons     []damage.Formula
	grants      []Grant
	mods        *stat.Set
	vehicle     *Vehicle
}

// Vehicle returns the vehicle that owns the component.
func (c *Component) Vehicle() *Vehicle { return c.vehicle }

// EntityID returns the vehicle-qualified component ID, e.g. "interceptor/turret".
func (c *Component) EntityID() string {
	if c.vehicle == nil {
		return c.ID
	}
	return c.vehicle.ID + "/" + c.ID
}

// BaseValue implements stat.Participant.
func (c *Component) BaseValue(attr stat.Attribute) (float64, bool) {
	v, ok := c.base[attr]
	return v, ok
}

// Modifiers implements stat.Participant.
func (c *Component) Modifiers() *stat.Set { return c.mods }

// Resistance returns the component's resistance to damageType.
func (c *Component) Resistance(damageType string) damage.Resistance {
	return c.resistances[damageType]
}

// Weapons returns a copy of the component's damage formulas.
func (c *Component) Weapons() []damage.Formula {
	out := make([]damage.Formula, len(c.weapons))
	copy(out, c.weapons)
	return out
}

// Armed reports whether the component carries at least one damage formula.
func (c *Component) Armed() bool { return len(c.weapons) > 0 }

// ApplyDamage reduces Health by amount, flooring at zero. A component at zero
// health is destroyed.
//
// Precondition: amount >= 0.
// Postcondition: Destroyed is true iff Health == 0.
func (c *Component) ApplyDamage(amount int) (before, after int) {
	before = c.Health
	c.Health -= amount
	if c.Health <= 0 {
		c.Health = 0
		c.Destroyed = true
	}
	return before, c.Health
}

// EffectiveMaxHealth is MaxHealth after the component's own max_health
// modifiers and any sibling grants.
func (c *Component) EffectiveMaxHealth() int {
	mods := c.mods.For(stat.MaxHealth)
	if c.vehicle != nil {
		mods = append(mods, c.vehicle.AuxiliaryModifiers(c, stat.MaxHealth)...)
	}
	return stat.Round(stat.Compute(float64(c.MaxHealth), mods))
}

// Heal raises Health by amount, capped at EffectiveMaxHealth. Destroyed
// components do not heal, and healing never lowers Health.
func (c *Component) Heal(amount int) (before, after int) {
	before = c.Health
	if c.Destroyed {
		return before, before
	}
	c.Health += amount
	if limit := max(c.EffectiveMaxHealth(), before); c.Health > limit {
		c.Health = limit
	}
	return before, c.Health
}

// HasEnergyPool reports whether the component stores energy.
func (c *Component) HasEnergyPool() bool { return c.MaxEnergy > 0 }

// AdjustEnergy adds delta to Energy, clamped to [0, MaxEnergy].
func (c *Component) AdjustEnergy(delta int) (before, after int) {
	before = c.Energy
	c.Energy += delta
	if c.Energy < 0 {
		c.Energy = 0
	}
	if c.Energy > c.MaxEnergy {
		c.Energy = c.MaxEnergy
	}
	return before, c.Energy
}
