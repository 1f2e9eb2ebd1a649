package check

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

// Policy decides, per roll family, whether a natural 20 always succeeds and a
// natural 1 always fails regardless of the total.
type Policy struct {
	Attack     bool
	Save       bool
	SkillCheck bool
}

// DefaultPolicy applies the natural-roll override to every roll family.
func DefaultPolicy() Policy {
	return Policy{Attack: true, Save: true, SkillCheck: true}
}

// NaturalRolls reports whether the natural-roll override applies to kind.
func (p Policy) NaturalRolls(kind Kind) bool {
	switch kind {
	case KindAttack:
		return p.Attack
	case KindSave:
		return p.Save
	case KindSkillCheck:
		return p.SkillCheck
	default:
		return false
	}
}

// Resolve builds the Outcome for a known natural roll. It is pure: the same
// inputs always yield the same Outcome.
//
// Precondition: 1 <= natural <= 20.
func Resolve(kind Kind, natural int, bonuses []Bonus, target int, policy Policy) Outcome {
	cp := make([]Bonus, len(bonuses))
	copy(cp, bonuses)
	o := Outcome{
		kind:     kind,
		baseRoll: natural,
		bonuses:  cp,
		target:   target,
	}
	switch {
	case policy.NaturalRolls(kind) && natural == dice.D20:
		o.success = true
		o.criticalHit = true
	case policy.NaturalRolls(kind) && natural == 1:
		o.success = false
		o.fumble = true
	default:
		o.success = o.Total() >= target
	}
	return o
}

// AutoFail returns the Outcome used when routing finds nothing that can roll:
// no die, no bonuses, never a success.
//
// Postcondition: BaseRoll() == 0, len(Bonuses()) == 0, !Success(), AutoFail().
func AutoFail(kind Kind, target int) Outcome {
	return Outcome{
		kind:     kind,
		target:   target,
		bonuses:  []Bonus{},
		autoFail: true,
	}
}

// Engine rolls d20 checks. It is not safe for concurrent use when its dice
// Source is not.
type Engine struct {
	roller *dice.Roller
	policy Policy
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: roller and logger must be non-nil.
func NewEngine(roller *dice.Roller, policy Policy, logger *zap.Logger) *Engine {
	if roller == nil || logger == nil {
		panic("check: NewEngine precondition violated: roller and logger must be non-nil")
	}
	return &Engine{roller: roller, policy: policy, logger: logger}
}

// Policy returns the natural-roll policy in effect.
func (e *Engine) Policy() Policy { return e.policy }

// Roll draws one d20 and resolves it against target.
//
// Postcondition: 1 <= BaseRoll() <= 20.
func (e *Engine) Roll(kind Kind, bonuses []Bonus, target int) Outcome {
	o := Resolve(kind, e.roller.D20(), bonuses, target, e.policy)
	e.logger.Debug("check resolved", zap.Object("outcome", o))
	return o
}

// AutoFail records and returns an auto-fail Outcome.
func (e *Engine) AutoFail(kind Kind, target int) Outcome {
	o := AutoFail(kind, target)
	e.logger.Debug("check auto-failed", zap.Object("outcome", o))
	return o
}
