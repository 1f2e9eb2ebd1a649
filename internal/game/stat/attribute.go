// Package stat implements attribute modifiers and the aggregation algorithm
// that turns a base value plus its modifiers into a final stat.
package stat

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Attribute is an enumerated stat key. The zero value is intentionally invalid.
type Attribute int

const (
	AttributeUnknown Attribute = iota
	ArmorClass
	Speed
	MaxHealth
	AttackBonus
	Mobility
	Handling
	MaxEnergy
	DamageBonus
	CheckBonus
	SaveBonus
)

var attributeNames = map[Attribute]string{
	ArmorClass:  "armor_class",
	Speed:       "speed",
	MaxHealth:   "max_health",
	AttackBonus: "attack_bonus",
	Mobility:    "mobility",
	Handling:    "handling",
	MaxEnergy:   "max_energy",
	DamageBonus: "damage_bonus",
	CheckBonus:  "check_bonus",
	SaveBonus:   "save_bonus",
}

// String returns the snake_case name used in authored content.
func (a Attribute) String() string {
	if n, ok := attributeNames[a]; ok {
		return n
	}
	return "unknown"
}

// Attributes returns every valid attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, 0, len(attributeNames))
	for a := range attributeNames {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAttribute maps a snake_case name to its Attribute.
func ParseAttribute(s string) (Attribute, error) {
	for a, n := range attributeNames {
		if n == s {
			return a, nil
		}
	}
	return AttributeUnknown, fmt.Errorf("stat: unknown attribute %q", s)
}

// UnmarshalYAML decodes an attribute from its snake_case name.
func (a *Attribute) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAttribute(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalYAML encodes an attribute as its snake_case name.
func (a Attribute) MarshalYAML() (any, error) {
	return a.String(), nil
}
