// Package check implements the d20 resolution primitive shared by attacks,
// saving throws, and skill checks.
package check

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Kind identifies which family of roll is being resolved.
type Kind int

const (
	KindAttack Kind = iota
	KindSave
	KindSkillCheck
)

// String returns "attack", "save", or "skill_check".
func (k Kind) String() string {
	switch k {
	case KindAttack:
		return "attack"
	case KindSave:
		return "save"
	case KindSkillCheck:
		return "skill_check"
	default:
		return "unknown"
	}
}

// Bonus is one labelled term added to a d20 roll.
type Bonus struct {
	Label string
	Value int
}

// String renders the bonus as "+3 Dexterity".
func (b Bonus) String() string {
	return fmt.Sprintf("%+d %s", b.Value, b.Label)
}

// Sum returns the total of all bonus values.
func Sum(bonuses []Bonus) int {
	total := 0
	for _, b := range bonuses {
		total += b.Value
	}
	return total
}

// Outcome is the immutable result of one d20 resolution. It is created once
// by Resolve or AutoFail; every accessor returns a copy.
type Outcome struct {
	kind        Kind
	baseRoll    int
	bonuses     []Bonus
	target      int
	success     bool
	criticalHit bool
	fumble      bool
	autoFail    bool
}

// Kind returns the roll family.
func (o Outcome) Kind() Kind { return o.kind }

// BaseRoll returns the natural d20 result, or 0 for an auto-fail.
func (o Outcome) BaseRoll() int { return o.baseRoll }

// Bonuses returns a copy of the ordered bonus list.
func (o Outcome) Bonuses() []Bonus {
	out := make([]Bonus, len(o.bonuses))
	copy(out, o.bonuses)
	return out
}

// Target returns the DC or armor class the roll was made against.
func (o Outcome) Target() int { return o.target }

// Success reports whether the roll met its target.
func (o Outcome) Success() bool { return o.success }

// CriticalHit reports a natural 20 under a natural-roll policy.
func (o Outcome) CriticalHit() bool { return o.criticalHit }

// Fumble reports a natural 1 under a natural-roll policy.
func (o Outcome) Fumble() bool { return o.fumble }

// AutoFail reports that no roll occurred because nothing could attempt it.
func (o Outcome) AutoFail() bool { return o.autoFail }

// BonusTotal returns the sum of all bonuses.
func (o Outcome) BonusTotal() int { return Sum(o.bonuses) }

// Total returns BaseRoll plus every bonus.
func (o Outcome) Total() int { return o.baseRoll + Sum(o.bonuses) }

// String renders an audit line such as "d20 10 +3 Dexterity +3 Proficiency = 16 vs 15: success".
func (o Outcome) String() string {
	if o.autoFail {
		return fmt.Sprintf("auto-fail vs %d", o.target)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "d20 %d", o.baseRoll)
	for _, bonus := range o.bonuses {
		b.WriteString(" ")
		b.WriteString(bonus.String())
	}
	fmt.Fprintf(&b, " = %d vs %d: ", o.Total(), o.target)
	switch {
	case o.criticalHit:
		b.WriteString("critical success")
	case o.fumble:
		b.WriteString("fumble")
	case o.success:
		b.WriteString("success")
	default:
		b.WriteString("failure")
	}
	return b.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (o Outcome) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", o.kind.String())
	enc.AddInt("base_roll", o.baseRoll)
	enc.AddInt("total", o.Total())
	enc.AddInt("target", o.target)
	enc.AddBool("success", o.success)
	if o.criticalHit {
		enc.AddBool("critical_hit", true)
	}
	if o.fumble {
		enc.AddBool("fumble", true)
	}
	if o.autoFail {
		enc.AddBool("auto_fail", true)
	}
	return enc.AddArray("bonuses", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, b := range o.bonuses {
			arr.AppendString(b.String())
		}
		return nil
	}))
}
