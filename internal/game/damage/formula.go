package damage

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

// Formula is an authored damage expression for one damage type.
type Formula struct {
	Label      string
	Dice       int
	DieSize    int
	Bonus      int
	DamageType string
}

// FormulaFromExpr builds a Formula from a dice expression such as "2d6+3".
// Keep-highest expressions are rejected: damage dice are always summed.
func FormulaFromExpr(label, expr, damageType string) (Formula, error) {
	e, err := dice.Parse(expr)
	if err != nil {
		return Formula{}, fmt.Errorf("damage formula %q: %w", label, err)
	}
	if e.KeepHighest > 0 {
		return Formula{}, fmt.Errorf("damage formula %q: keep-highest is not supported", label)
	}
	return Formula{
		Label:      label,
		Dice:       e.Count,
		DieSize:    e.Sides,
		Bonus:      e.Modifier,
		DamageType: damageType,
	}, nil
}

// IsEmpty reports a formula that can never deal damage: no dice and no bonus.
func (f Formula) IsEmpty() bool {
	return f.Dice <= 0 && f.Bonus == 0
}

// String renders the formula as "2d6+3 fire".
func (f Formula) String() string {
	s := fmt.Sprintf("%dd%d", f.Dice, f.DieSize)
	if f.Bonus != 0 {
		s += fmt.Sprintf("%+d", f.Bonus)
	}
	if f.DamageType != "" {
		s += " " + f.DamageType
	}
	return s
}

type formulaYAML struct {
	Label   string `yaml:"label"`
	Expr    string `yaml:"expr"`
	Dice    int    `yaml:"dice"`
	DieSize int    `yaml:"die_size"`
	Bonus   int    `yaml:"bonus"`
	Type    string `yaml:"type"`
}

// UnmarshalYAML accepts either an "expr" dice expression or explicit
// dice/die_size/bonus fields.
func (f *Formula) UnmarshalYAML(node *yaml.Node) error {
	var raw formulaYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Expr != "" {
		parsed, err := FormulaFromExpr(raw.Label, raw.Expr, raw.Type)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	}
	*f = Formula{
		Label:      raw.Label,
		Dice:       raw.Dice,
		DieSize:    raw.DieSize,
		Bonus:      raw.Bonus,
		DamageType: raw.Type,
	}
	return nil
}
