package effect

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/invariant"
)

// Target is anything a status effect can be applied to.
type Target interface {
	stat.Participant
	EntityID() string
	ApplyDamage(amount int) (before, after int)
	Heal(amount int) (before, after int)
	AdjustEnergy(delta int) (before, after int)
}

// Resistant is implemented by targets that resist damage types.
type Resistant interface {
	Resistance(damageType string) damage.Resistance
}

// Hooks runs content-authored scripts. *scripting.Manager satisfies it.
type Hooks interface {
	Call(scope, hook string, args map[string]any) (any, error)
}

// EnergyPool is implemented by targets that may lack an energy pool. Energy
// periodic entries on such a target are skipped without an event.
type EnergyPool interface {
	HasEnergyPool() bool
}

// HookScope is the script scope effect hooks are looked up in.
const HookScope = "effects"

// Runtime owns every applied effect instance and drives their lifecycle.
// It is not safe for concurrent use; the caller must serialise access.
type Runtime struct {
	damage *damage.Engine
	pub    event.Publisher
	guard  *invariant.Guard
	logger *zap.Logger
	hooks  Hooks

	byTarget map[string][]*Applied
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithHooks routes lua_on_* hooks to h.
func WithHooks(h Hooks) Option {
	return func(r *Runtime) { r.hooks = h }
}

// NewRuntime creates a Runtime.
//
// Precondition: every argument must be non-nil.
func NewRuntime(dmg *damage.Engine, pub event.Publisher, guard *invariant.Guard, logger *zap.Logger, opts ...Option) *Runtime {
	if dmg == nil || pub == nil || guard == nil || logger == nil {
		panic("effect: NewRuntime precondition violated: damage engine, publisher, guard and logger must be non-nil")
	}
	r := &Runtime{
		damage:   dmg,
		pub:      pub,
		guard:    guard,
		logger:   logger,
		byTarget: make(map[string][]*Applied),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Apply binds def to target. Re-applying a definition already active on the
// target refreshes it: the old instance is removed first, so its modifiers
// are never doubled. A nil def is an authoring error and yields nil.
//
// Postcondition: The returned instance is Active and every modifier it created
// is attached to target.
func (r *Runtime) Apply(def *Definition, target Target, applierID string) *Applied {
	if def == nil || target == nil {
		r.logger.Warn("status effect apply skipped: missing definition or target", zap.String("applier", applierID))
		return nil
	}
	if prev := r.Find(target.EntityID(), def.ID); prev != nil {
		r.remove(prev, event.ReasonRefreshed)
	}

	inst := newApplied(def, target, applierID)
	for _, mt := range def.Modifiers {
		m := stat.NewModifier(mt.Attribute, mt.Kind, mt.Value, def.DisplayName(), def.Category)
		inst.created = append(inst.created, m)
		target.Modifiers().Add(m)
	}
	inst.state = StateActive
	id := target.EntityID()
	r.byTarget[id] = append(r.byTarget[id], inst)

	r.pub.Publish(event.StatusEffectAppliedEvent{
		EffectID:   def.ID,
		InstanceID: inst.ID,
		TargetID:   id,
		ApplierID:  applierID,
		Turns:      inst.TurnsRemaining,
		Modifiers:  inst.Created(),
	})
	r.runHook(def.LuaOnApply, inst)
	r.logger.Debug("status effect applied",
		zap.String("effect", def.ID),
		zap.String("target", id),
		zap.Int("modifiers", len(inst.created)),
	)
	return inst
}

// Tick advances every effect on target by one turn: instances already at
// zero turns are removed first, then each active instance resolves its
// periodic entries, then finite durations are decremented and instances that
// reach zero are removed. It returns the instances that expired.
func (r *Runtime) Tick(target Target) []*Applied {
	if target == nil {
		return nil
	}
	id := target.EntityID()
	var expired []*Applied

	for _, inst := range r.Active(id) {
		if inst.TurnsRemaining == 0 {
			r.remove(inst, event.ReasonExpired)
			expired = append(expired, inst)
		}
	}
	for _, inst := range r.Active(id) {
		if inst.state != StateActive {
			continue
		}
		for _, p := range inst.Def.Periodic {
			r.resolvePeriodic(inst, p)
		}
		r.runHook(inst.Def.LuaOnTick, inst)
		if inst.TurnsRemaining == Indefinite {
			continue
		}
		if !r.guard.Check(inst.TurnsRemaining > 0, "active effect with negative duration",
			zap.String("effect", inst.Def.ID), zap.Int("turns", inst.TurnsRemaining)) {
			inst.TurnsRemaining = 0
		} else {
			inst.TurnsRemaining--
		}
		if inst.TurnsRemaining == 0 {
			r.remove(inst, event.ReasonExpired)
			expired = append(expired, inst)
		}
	}
	return expired
}

// Remove ends inst. Removing an instance that is already removed, or nil,
// changes nothing and returns false.
//
// Postcondition: None of inst's created modifiers remain on its target.
func (r *Runtime) Remove(inst *Applied) bool {
	if inst == nil || inst.state == StateRemoved {
		return false
	}
	r.remove(inst, event.ReasonRemoved)
	return true
}

// Dispel removes up to n dispellable effects from the target with id, oldest
// first. n <= 0 dispels every dispellable effect.
func (r *Runtime) Dispel(targetID string, n int) []*Applied {
	var out []*Applied
	for _, inst := range r.Active(targetID) {
		if n > 0 && len(out) >= n {
			break
		}
		if !inst.Def.Category.Dispellable() {
			continue
		}
		r.remove(inst, event.ReasonDispelled)
		out = append(out, inst)
	}
	return out
}

// Clear removes every effect on the target with id.
func (r *Runtime) Clear(targetID string) {
	for _, inst := range r.Active(targetID) {
		r.remove(inst, event.ReasonRemoved)
	}
}

// Active returns a snapshot of the instances on the target with id, in
// application order.
func (r *Runtime) Active(targetID string) []*Applied {
	list := r.byTarget[targetID]
	out := make([]*Applied, len(list))
	copy(out, list)
	return out
}

// Find returns the active instance of defID on the target with id, or nil.
func (r *Runtime) Find(targetID, defID string) *Applied {
	for _, inst := range r.byTarget[targetID] {
		if inst.Def.ID == defID {
			return inst
		}
	}
	return nil
}

// PreventsActions reports whether any active effect stops the target acting.
func (r *Runtime) PreventsActions(targetID string) bool {
	for _, inst := range r.byTarget[targetID] {
		if inst.state == StateActive && inst.Def.Behavior.PreventsActions {
			return true
		}
	}
	return false
}

// PreventsMovement reports whether any active effect pins the target.
func (r *Runtime) PreventsMovement(targetID string) bool {
	for _, inst := range r.byTarget[targetID] {
		if inst.state == StateActive && inst.Def.Behavior.PreventsMovement {
			return true
		}
	}
	return false
}

// DamageAmplification returns the product of every active effect's damage
// amplification on the target. Effects that do not amplify contribute 1.
//
// Postcondition: Returns > 0.
func (r *Runtime) DamageAmplification(targetID string) float64 {
	factor := 1.0
	for _, inst := range r.byTarget[targetID] {
		if amp := inst.Def.Behavior.DamageAmplification; inst.state == StateActive && amp > 0 {
			factor *= amp
		}
	}
	return factor
}

func (r *Runtime) remove(inst *Applied, reason string) {
	if inst.state == StateRemoved {
		return
	}
	inst.state = StateRemoving
	target := inst.Target
	detached := 0
	for _, m := range inst.created {
		if r.guard.Check(target.Modifiers().Remove(m.ID), "effect modifier missing at removal",
			zap.String("effect", inst.Def.ID), zap.String("modifier", m.ID)) {
			detached++
		}
	}
	inst.created = nil

	id := target.EntityID()
	list := r.byTarget[id]
	for i, other := range list {
		if other == inst {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byTarget, id)
	} else {
		r.byTarget[id] = list
	}
	inst.state = StateRemoved

	r.pub.Publish(event.StatusEffectExpiredEvent{
		EffectID:   inst.Def.ID,
		InstanceID: inst.ID,
		TargetID:   id,
		Reason:     reason,
		Detached:   detached,
	})
	r.runHook(inst.Def.LuaOnRemove, inst)
}

func (r *Runtime) resolvePeriodic(inst *Applied, p Periodic) {
	target := inst.Target
	id := target.EntityID()
	cause := inst.Def.ID

	switch p.Kind {
	case PeriodicDamage:
		res := damage.Normal
		if rt, ok := target.(Resistant); ok {
			res = rt.Resistance(p.Formula.DamageType)
		}
		result := r.damage.Compute(p.Formula, res, false)
		amp := r.DamageAmplification(id)
		dealt := damage.Amplify(result.FinalDamage, amp)
		r.pub.Publish(event.DamageEvent{
			SourceID:      inst.ApplierID,
			TargetID:      id,
			Result:        result,
			Amplification: amp,
			Dealt:         dealt,
			Tag:           cause,
		})
		before, after := target.ApplyDamage(dealt)
		r.publishResource(id, event.ResourceHealth, before, after, cause)
	case PeriodicHealing:
		amount := r.damage.Compute(p.Formula, damage.Normal, false).FinalDamage
		before, after := target.Heal(amount)
		r.publishResource(id, event.ResourceHealth, before, after, cause)
	case PeriodicEnergyDrain, PeriodicEnergyRestore:
		if ep, ok := target.(EnergyPool); ok && !ep.HasEnergyPool() {
			r.logger.Debug("energy periodic skipped: target has no energy pool",
				zap.String("effect", inst.Def.ID),
				zap.String("target", id),
			)
			return
		}
		amount := r.damage.Compute(p.Formula, damage.Normal, false).FinalDamage
		if p.Kind == PeriodicEnergyDrain {
			amount = -amount
		}
		before, after := target.AdjustEnergy(amount)
		r.publishResource(id, event.ResourceEnergy, before, after, cause)
	default:
		r.logger.Warn("periodic entry has no kind", zap.String("effect", inst.Def.ID))
	}
}

func (r *Runtime) publishResource(targetID, resource string, before, after int, cause string) {
	r.pub.Publish(event.ResourceChangedEvent{
		TargetID: targetID,
		Resource: resource,
		Before:   before,
		After:    after,
		Cause:    cause,
	})
}

func (r *Runtime) runHook(hook string, inst *Applied) {
	if hook == "" || r.hooks == nil {
		return
	}
	args := map[string]any{
		"effect":          inst.Def.ID,
		"instance":        inst.ID,
		"target":          inst.Target.EntityID(),
		"applier":         inst.ApplierID,
		"turns_remaining": inst.TurnsRemaining,
		"state":           inst.state.String(),
	}
	if _, err := r.hooks.Call(HookScope, hook, args); err != nil {
		r.logger.Warn("status effect hook failed",
			zap.String("effect", inst.Def.ID),
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}
