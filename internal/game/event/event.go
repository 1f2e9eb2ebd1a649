// Package event carries the audit feed of the resolution core: every roll,
// damage computation, and status change is published as an Event.
package event

import (
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// Type names an event kind.
type Type string

const (
	TypeAttackRoll          Type = "attack_roll"
	TypeSavingThrow         Type = "saving_throw"
	TypeSkillCheck          Type = "skill_check"
	TypeDamage              Type = "damage"
	TypeStatusEffectApplied Type = "status_effect_applied"
	TypeStatusEffectExpired Type = "status_effect_expired"
	TypeResourceChanged     Type = "resource_changed"
)

// Event is one audit record. The event carries the full numeric breakdown so
// consumers never re-derive an outcome.
type Event interface {
	zapcore.ObjectMarshaler
	Type() Type
}

// Tags attached to events produced by special rules.
const (
	TagFallback = "fallback"
)

// AttackRollEvent records one attack roll against a component.
type AttackRollEvent struct {
	AttackerID string
	GunnerID   string
	TargetID   string
	Weapon     string
	Outcome    check.Outcome
	// Tag is empty for a primary attack and names the rule for a follow-up.
	Tag string
}

func (AttackRollEvent) Type() Type { return TypeAttackRoll }

func (e AttackRollEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("attacker", e.AttackerID)
	if e.GunnerID != "" {
		enc.AddString("gunner", e.GunnerID)
	}
	enc.AddString("target", e.TargetID)
	enc.AddString("weapon", e.Weapon)
	if e.Tag != "" {
		enc.AddString("tag", e.Tag)
	}
	enc.AddBool("success", e.Outcome.Success())
	return enc.AddObject("outcome", e.Outcome)
}

// SavingThrowEvent records one saving throw.
type SavingThrowEvent struct {
	ActorID string
	Spec    string
	Reason  string
	Outcome check.Outcome
}

func (SavingThrowEvent) Type() Type { return TypeSavingThrow }

func (e SavingThrowEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	return marshalCheck(enc, e.ActorID, e.Spec, e.Reason, e.Outcome)
}

// SkillCheckEvent records one skill or attribute check.
type SkillCheckEvent struct {
	ActorID string
	Spec    string
	Reason  string
	Outcome check.Outcome
}

func (SkillCheckEvent) Type() Type { return TypeSkillCheck }

func (e SkillCheckEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	return marshalCheck(enc, e.ActorID, e.Spec, e.Reason, e.Outcome)
}

func marshalCheck(enc zapcore.ObjectEncoder, actor, spec, reason string, o check.Outcome) error {
	enc.AddString("actor", actor)
	enc.AddString("spec", spec)
	if reason != "" {
		enc.AddString("reason", reason)
	}
	enc.AddBool("success", o.Success())
	return enc.AddObject("outcome", o)
}

// DamageEvent records damage computed and dealt to a target.
type DamageEvent struct {
	SourceID string
	TargetID string
	Result   damage.Result
	// Amplification is the multiplier applied after resistance; 1 when none.
	Amplification float64
	// Dealt is the amount subtracted from the target's health.
	Dealt int
	Tag   string
}

func (DamageEvent) Type() Type { return TypeDamage }

func (e DamageEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("source", e.SourceID)
	enc.AddString("target", e.TargetID)
	if e.Tag != "" {
		enc.AddString("tag", e.Tag)
	}
	enc.AddFloat64("amplification", e.Amplification)
	enc.AddInt("dealt", e.Dealt)
	enc.AddBool("success", e.Dealt > 0)
	return enc.AddObject("result", e.Result)
}

// StatusEffectAppliedEvent records an effect instance entering Active.
type StatusEffectAppliedEvent struct {
	EffectID   string
	InstanceID string
	TargetID   string
	ApplierID  string
	Turns      int
	Modifiers  []stat.Modifier
}

func (StatusEffectAppliedEvent) Type() Type { return TypeStatusEffectApplied }

func (e StatusEffectAppliedEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("effect", e.EffectID)
	enc.AddString("instance", e.InstanceID)
	enc.AddString("target", e.TargetID)
	enc.AddString("applier", e.ApplierID)
	enc.AddInt("turns", e.Turns)
	enc.AddBool("success", true)
	return enc.AddArray("modifiers", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, m := range e.Modifiers {
			arr.AppendString(m.String())
		}
		return nil
	}))
}

// Reasons an effect instance leaves the Active state.
const (
	ReasonExpired   = "expired"
	ReasonRemoved   = "removed"
	ReasonDispelled = "dispelled"
	ReasonRefreshed = "refreshed"
)

// StatusEffectExpiredEvent records an effect instance being removed.
type StatusEffectExpiredEvent struct {
	EffectID   string
	InstanceID string
	TargetID   string
	Reason     string
	// Detached is how many modifiers were removed from the target.
	Detached int
}

func (StatusEffectExpiredEvent) Type() Type { return TypeStatusEffectExpired }

func (e StatusEffectExpiredEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("effect", e.EffectID)
	enc.AddString("instance", e.InstanceID)
	enc.AddString("target", e.TargetID)
	enc.AddString("reason", e.Reason)
	enc.AddInt("detached", e.Detached)
	enc.AddBool("success", true)
	return nil
}

// Resources a ResourceChangedEvent may report.
const (
	ResourceHealth = "health"
	ResourceEnergy = "energy"
)

// ResourceChangedEvent records a direct change to a health or energy pool.
type ResourceChangedEvent struct {
	TargetID string
	Resource string
	Before   int
	After    int
	Cause    string
}

func (ResourceChangedEvent) Type() Type { return TypeResourceChanged }

// Delta returns After - Before.
func (e ResourceChangedEvent) Delta() int { return e.After - e.Before }

func (e ResourceChangedEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("target", e.TargetID)
	enc.AddString("resource", e.Resource)
	enc.AddInt("before", e.Before)
	enc.AddInt("after", e.After)
	enc.AddInt("delta", e.Delta())
	enc.AddString("cause", e.Cause)
	enc.AddBool("success", e.Before != e.After)
	return nil
}
