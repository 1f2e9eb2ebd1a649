package character

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ability is one of the six core ability scores. The zero value is invalid.
type Ability int

const (
	AbilityUnknown Ability = iota
	Strength
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

var abilityNames = [...]string{"unknown", "strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// String returns the lower-case ability name.
func (a Ability) String() string {
	if a < 0 || int(a) >= len(abilityNames) {
		return "unknown"
	}
	return abilityNames[a]
}

// Label returns the capitalised display name, e.g. "Dexterity".
func (a Ability) Label() string {
	s := a.String()
	return string(s[0]-'a'+'A') + s[1:]
}

// ParseAbility maps a lower-case ability name to its Ability.
func ParseAbility(s string) (Ability, error) {
	for i, n := range abilityNames {
		if i > 0 && n == s {
			return Ability(i), nil
		}
	}
	return AbilityUnknown, fmt.Errorf("character: unknown ability %q", s)
}

// UnmarshalYAML decodes an ability from its name.
func (a *Ability) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAbility(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AbilityScores holds the six ability score values for a character.
type AbilityScores struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
	Wisdom       int `yaml:"wisdom"`
	Charisma     int `yaml:"charisma"`
}

// Score returns the raw score for ability, or 10 for an unknown ability.
func (a AbilityScores) Score(ability Ability) int {
	switch ability {
	case Strength:
		return a.Strength
	case Dexterity:
		return a.Dexterity
	case Constitution:
		return a.Constitution
	case Intelligence:
		return a.Intelligence
	case Wisdom:
		return a.Wisdom
	case Charisma:
		return a.Charisma
	default:
		return 10
	}
}

// Modifier returns the modifier for ability.
func (a AbilityScores) Modifier(ability Ability) int {
	return AbilityMod(a.Score(ability))
}

// AbilityMod computes the standard ability modifier using floor division: floor((score - 10) / 2).
//
// Postcondition: Returns floor((score - 10) / 2).
func AbilityMod(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ProficiencyBonus returns the proficiency bonus for the given level.
// Formula: 2 + (level-1)/4.
//
// Precondition: level >= 1.
// Postcondition: Returns >= 2.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}
