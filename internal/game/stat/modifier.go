package stat

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Kind selects how a modifier combines with the base value.
type Kind int

const (
	Flat Kind = iota
	Multiplier
)

// String returns "flat" or "multiplier".
func (k Kind) String() string {
	if k == Multiplier {
		return "multiplier"
	}
	return "flat"
}

// UnmarshalYAML decodes "flat" or "multiplier".
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "flat", "":
		*k = Flat
	case "multiplier":
		*k = Multiplier
	default:
		return fmt.Errorf("stat: unknown modifier kind %q", s)
	}
	return nil
}

// Category tags a modifier with where it came from.
type Category int

const (
	CategoryOther Category = iota
	CategoryEquipment
	CategoryStatusEffect
	CategoryAura
	CategorySkill
)

// String returns the snake_case category name.
func (c Category) String() string {
	switch c {
	case CategoryEquipment:
		return "equipment"
	case CategoryStatusEffect:
		return "status_effect"
	case CategoryAura:
		return "aura"
	case CategorySkill:
		return "skill"
	default:
		return "other"
	}
}

// Dispellable reports whether modifiers of this category can be dispelled.
// Only status effects and auras are; equipment is permanent.
func (c Category) Dispellable() bool {
	return c == CategoryStatusEffect || c == CategoryAura
}

// UnmarshalYAML decodes a category from its snake_case name.
func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "equipment":
		*c = CategoryEquipment
	case "status_effect", "":
		*c = CategoryStatusEffect
	case "aura":
		*c = CategoryAura
	case "skill":
		*c = CategorySkill
	case "other":
		*c = CategoryOther
	default:
		return fmt.Errorf("stat: unknown modifier category %q", s)
	}
	return nil
}

// Modifier is a flat or multiplicative adjustment to one attribute.
//
// ID is the identity handle; two modifiers with equal values are still
// distinct if their IDs differ.
type Modifier struct {
	ID        string
	Attribute Attribute
	Kind      Kind
	Value     float64
	Source    string
	Category  Category
}

// NewModifier creates a Modifier with a fresh identity handle.
func NewModifier(attr Attribute, kind Kind, value float64, source string, cat Category) Modifier {
	return Modifier{
		ID:        uuid.NewString(),
		Attribute: attr,
		Kind:      kind,
		Value:     value,
		Source:    source,
		Category:  cat,
	}
}

// String renders the modifier as "+2 armor_class (Plating)" or "x1.5 speed (Nitro)".
func (m Modifier) String() string {
	if m.Kind == Multiplier {
		return fmt.Sprintf("x%g %s (%s)", m.Value, m.Attribute, m.Source)
	}
	return fmt.Sprintf("%+g %s (%s)", m.Value, m.Attribute, m.Source)
}
