// Package damage turns damage formulas into final damage after resistance.
package damage

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resistance classifies how a target takes one damage type.
// The zero value is Normal.
type Resistance int

const (
	Normal Resistance = iota
	Vulnerable
	Resistant
	Immune
)

// String returns the lower-case resistance name.
func (r Resistance) String() string {
	switch r {
	case Vulnerable:
		return "vulnerable"
	case Resistant:
		return "resistant"
	case Immune:
		return "immune"
	default:
		return "normal"
	}
}

// ParseResistance maps a lower-case name to its Resistance.
func ParseResistance(s string) (Resistance, error) {
	switch s {
	case "normal", "":
		return Normal, nil
	case "vulnerable":
		return Vulnerable, nil
	case "resistant":
		return Resistant, nil
	case "immune":
		return Immune, nil
	default:
		return Normal, fmt.Errorf("damage: unknown resistance %q", s)
	}
}

// UnmarshalYAML decodes a resistance from its name.
func (r *Resistance) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseResistance(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Apply transforms a raw total: Vulnerable doubles, Resistant halves
// truncating toward zero, Immune zeroes, Normal passes through.
func (r Resistance) Apply(raw int) int {
	switch r {
	case Vulnerable:
		return raw * 2
	case Resistant:
		return raw / 2
	case Immune:
		return 0
	default:
		return raw
	}
}

// Amplify scales final damage by an amplification factor, truncating.
// Factors <= 0 are treated as 1.
func Amplify(final int, factor float64) int {
	if factor <= 0 || factor == 1 {
		return final
	}
	return int(float64(final) * factor)
}
