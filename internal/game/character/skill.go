package character

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Skill is a trained crew skill. The zero value is invalid.
type Skill int

const (
	SkillUnknown Skill = iota
	Piloting
	Gunnery
	Mechanics
	Perception
	Athletics
	Intimidation
	Endurance
)

type skillInfo struct {
	name string
	key  Ability
}

var skills = map[Skill]skillInfo{
	Piloting:     {"piloting", Dexterity},
	Gunnery:      {"gunnery", Dexterity},
	Mechanics:    {"mechanics", Intelligence},
	Perception:   {"perception", Wisdom},
	Athletics:    {"athletics", Strength},
	Intimidation: {"intimidation", Charisma},
	Endurance:    {"endurance", Constitution},
}

// String returns the lower-case skill name.
func (s Skill) String() string {
	if info, ok := skills[s]; ok {
		return info.name
	}
	return "unknown"
}

// KeyAbility returns the ability whose modifier applies to the skill.
func (s Skill) KeyAbility() Ability {
	return skills[s].key
}

// ParseSkill maps a lower-case skill name to its Skill.
func ParseSkill(name string) (Skill, error) {
	for s, info := range skills {
		if info.name == name {
			return s, nil
		}
	}
	return SkillUnknown, fmt.Errorf("character: unknown skill %q", name)
}

// UnmarshalYAML decodes a skill from its name.
func (s *Skill) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseSkill(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Test is what a character-domain check measures: either a trained skill or
// a raw ability. Only the two variants in this package implement it.
type Test interface {
	// Ability returns the ability whose modifier applies.
	Ability() Ability
	// Label returns a display name for logs and events.
	Label() string
	isTest()
}

// SkillTest measures a trained skill.
type SkillTest struct{ Skill Skill }

// Ability returns the skill's key ability.
func (t SkillTest) Ability() Ability { return t.Skill.KeyAbility() }

// Label returns the skill name.
func (t SkillTest) Label() string { return t.Skill.String() }

func (SkillTest) isTest() {}

// AbilityTest measures a raw ability.
type AbilityTest struct{ Of Ability }

// Ability returns the tested ability.
func (t AbilityTest) Ability() Ability { return t.Of }

// Label returns the ability name.
func (t AbilityTest) Label() string { return t.Of.String() }

func (AbilityTest) isTest() {}
