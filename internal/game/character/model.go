// Package character defines crew members: their abilities, trained skills,
// and the bonuses they contribute to checks and saving throws.
package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// Template is the authored description of a crew member.
type Template struct {
	ID                string        `yaml:"id"`
	Name              string        `yaml:"name"`
	Level             int           `yaml:"level"`
	Abilities         AbilityScores `yaml:"abilities"`
	MaxHealth         int           `yaml:"max_health"`
	Skills            []Skill       `yaml:"skills"`
	SaveProficiencies []Ability     `yaml:"save_proficiencies"`
}

// Character is a live crew member.
type Character struct {
	ID        string
	Name      string
	Level     int
	Abilities AbilityScores
	MaxHealth int
	Health    int

	skills []Skill
	saves  []Ability
	mods   *stat.Set
}

// Build constructs a Character from its template.
//
// Postcondition: Returns a Character at full health, or a non-nil error when
// the template has no ID, no name, or a level below 1.
func Build(t Template) (*Character, error) {
	if t.ID == "" {
		return nil, errors.New("character: id must not be empty")
	}
	if t.Name == "" {
		return nil, fmt.Errorf("character %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return nil, fmt.Errorf("character %q: level must be >= 1", t.ID)
	}
	maxHP := t.MaxHealth
	if maxHP < 1 {
		maxHP = 1
	}
	return &Character{
		ID:        t.ID,
		Name:      t.Name,
		Level:     t.Level,
		Abilities: t.Abilities,
		MaxHealth: maxHP,
		Health:    maxHP,
		skills:    append([]Skill(nil), t.Skills...),
		saves:     append([]Ability(nil), t.SaveProficiencies...),
		mods:      stat.NewSet(),
	}, nil
}

// ProficientIn reports whether the character is trained in skill.
func (c *Character) ProficientIn(skill Skill) bool {
	for _, s := range c.skills {
		if s == skill {
			return true
		}
	}
	return false
}

// ProficientSave reports whether the character is trained in saves of ability.
func (c *Character) ProficientSave(ability Ability) bool {
	for _, a := range c.saves {
		if a == ability {
			return true
		}
	}
	return false
}

// CheckBonuses returns the ordered bonus terms for a check: the key ability
// modifier, then proficiency when the test is a trained skill.
func (c *Character) CheckBonuses(t Test) []check.Bonus {
	bonuses := []check.Bonus{{Label: t.Ability().Label(), Value: c.Abilities.Modifier(t.Ability())}}
	if st, ok := t.(SkillTest); ok && c.ProficientIn(st.Skill) {
		bonuses = append(bonuses, check.Bonus{Label: "Proficiency", Value: ProficiencyBonus(c.Level)})
	}
	return bonuses
}

// SaveBonuses returns the ordered bonus terms for a saving throw. Skill tests
// use their key ability; proficiency applies when trained in that save or skill.
func (c *Character) SaveBonuses(t Test) []check.Bonus {
	bonuses := []check.Bonus{{Label: t.Ability().Label(), Value: c.Abilities.Modifier(t.Ability())}}
	proficient := c.ProficientSave(t.Ability())
	if st, ok := t.(SkillTest); ok && c.ProficientIn(st.Skill) {
		proficient = true
	}
	if proficient {
		bonuses = append(bonuses, check.Bonus{Label: "Proficiency", Value: ProficiencyBonus(c.Level)})
	}
	return bonuses
}

// IsIncapacitated reports whether the character has no health left.
func (c *Character) IsIncapacitated() bool { return c.Health <= 0 }

// BaseValue implements stat.Participant. Characters store only max health;
// check and save bonuses start at zero.
func (c *Character) BaseValue(attr stat.Attribute) (float64, bool) {
	switch attr {
	case stat.MaxHealth:
		return float64(c.MaxHealth), true
	case stat.CheckBonus, stat.SaveBonus:
		return 0, true
	default:
		return 0, false
	}
}

// Modifiers implements stat.Participant.
func (c *Character) Modifiers() *stat.Set { return c.mods }

// EntityID returns the character ID.
func (c *Character) EntityID() string { return c.ID }

// ApplyDamage reduces Health by amount, flooring at zero, and returns the
// health before and after.
//
// Precondition: amount >= 0.
func (c *Character) ApplyDamage(amount int) (before, after int) {
	before = c.Health
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
	return before, c.Health
}

// EffectiveMaxHealth is MaxHealth after max_health modifiers.
func (c *Character) EffectiveMaxHealth() int {
	return stat.Round(stat.Compute(float64(c.MaxHealth), c.mods.For(stat.MaxHealth)))
}

// Heal raises Health by amount, capped at EffectiveMaxHealth. Healing never
// lowers Health.
//
// Precondition: amount >= 0.
func (c *Character) Heal(amount int) (before, after int) {
	before = c.Health
	c.Health += amount
	if limit := max(c.EffectiveMaxHealth(), before); c.Health > limit {
		c.Health = limit
	}
	return before, c.Health
}

// AdjustEnergy is a no-op: crew members carry no energy pool.
func (c *Character) AdjustEnergy(int) (before, after int) { return 0, 0 }

// HasEnergyPool is always false for crew members.
func (c *Character) HasEnergyPool() bool { return false }
