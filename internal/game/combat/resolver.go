// Package combat is the inbound face of the resolution core. A Resolver
// routes each request, rolls it, publishes the outcome and only then applies
// consequences such as damage or status effects.
package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/effect"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/rules"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// Reasons an attempt auto-fails in addition to the routing reasons.
const (
	ReasonPrevented   = "prevented"
	ReasonImmobilized = "immobilized"
	ReasonUnarmed     = "unarmed"
)

// Deps are the collaborators a Resolver drives.
type Deps struct {
	Checks    *check.Engine
	Damage    *damage.Engine
	Router    *routing.Router
	Rules     *rules.Layer
	Effects   *effect.Runtime
	Publisher event.Publisher
	Logger    *zap.Logger
	// Aggregator is optional; a bare Aggregator is used when nil.
	Aggregator *stat.Aggregator
}

// Resolver implements the inbound operations. It is not safe for concurrent
// use; callers serialise resolutions.
type Resolver struct {
	agg     *stat.Aggregator
	checks  *check.Engine
	damage  *damage.Engine
	router  *routing.Router
	rules   *rules.Layer
	effects *effect.Runtime
	pub     event.Publisher
	logger  *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: every field of d except Aggregator must be non-nil.
func NewResolver(d Deps) *Resolver {
	if d.Checks == nil || d.Damage == nil || d.Router == nil || d.Rules == nil ||
		d.Effects == nil || d.Publisher == nil || d.Logger == nil {
		panic("combat: NewResolver precondition violated: all dependencies must be non-nil")
	}
	agg := d.Aggregator
	if agg == nil {
		agg = stat.NewAggregator()
	}
	return &Resolver{
		agg:     agg,
		checks:  d.Checks,
		damage:  d.Damage,
		router:  d.Router,
		rules:   d.Rules,
		effects: d.Effects,
		pub:     d.Publisher,
		logger:  d.Logger,
	}
}

// Effects exposes the status effect runtime for behavioral queries.
func (r *Resolver) Effects() *effect.Runtime { return r.effects }

// Total aggregates attr for p. Components also receive grants from their
// sibling components.
func (r *Resolver) Total(p stat.Participant, attr stat.Attribute) stat.Breakdown {
	if c, ok := p.(*vehicle.Component); ok && c.Vehicle() != nil {
		return r.agg.Total(p, attr, c.Vehicle())
	}
	return r.agg.Total(p, attr)
}

// ComputeDamage rolls f against res and publishes the result. Nothing is
// applied to any participant, so the event has no target.
//
// Postcondition: Returns a Result with FinalDamage >= 0.
func (r *Resolver) ComputeDamage(f damage.Formula, res damage.Resistance, critical bool) damage.Result {
	result := r.damage.Compute(f, res, critical)
	r.pub.Publish(event.DamageEvent{
		Result:        result,
		Amplification: 1,
		Dealt:         result.FinalDamage,
	})
	return result
}

// ApplyDamage rolls formulas against target, honoring its resistances and
// any amplification on it, publishes one DamageEvent per damage type and then
// subtracts the amplified total from target's health.
//
// Postcondition: Returns the per-type results and the health actually lost.
func (r *Resolver) ApplyDamage(sourceID string, target effect.Target, formulas []damage.Formula, critical bool) ([]damage.Result, int) {
	if target == nil || len(formulas) == 0 {
		r.logger.Warn("damage skipped: missing target or formulas", zap.String("source", sourceID))
		return nil, 0
	}
	return r.deal(sourceID, target, formulas, critical, "")
}

func (r *Resolver) deal(sourceID string, target effect.Target, formulas []damage.Formula, critical bool, tag string) ([]damage.Result, int) {
	resist := func(string) damage.Resistance { return damage.Normal }
	if rt, ok := target.(effect.Resistant); ok {
		resist = rt.Resistance
	}
	results := r.damage.ComputeAll(formulas, resist, critical)
	id := target.EntityID()
	amp := r.effects.DamageAmplification(id)

	total := 0
	for _, res := range results {
		dealt := damage.Amplify(res.FinalDamage, amp)
		total += dealt
		r.pub.Publish(event.DamageEvent{
			SourceID:      sourceID,
			TargetID:      id,
			Result:        res,
			Amplification: amp,
			Dealt:         dealt,
			Tag:           tag,
		})
	}
	before, after := target.ApplyDamage(total)
	r.pub.Publish(event.ResourceChangedEvent{
		TargetID: id,
		Resource: event.ResourceHealth,
		Before:   before,
		After:    after,
		Cause:    sourceID,
	})
	return results, before - after
}

// ApplyStatusEffect binds def to target on behalf of applierID.
func (r *Resolver) ApplyStatusEffect(def *effect.Definition, target effect.Target, applierID string) *effect.Applied {
	return r.effects.Apply(def, target, applierID)
}

// TickStatusEffects advances every effect on target by one turn and returns
// the instances that expired.
func (r *Resolver) TickStatusEffects(target effect.Target) []*effect.Applied {
	return r.effects.Tick(target)
}

// RemoveStatusEffect ends inst. It is idempotent.
func (r *Resolver) RemoveStatusEffect(inst *effect.Applied) bool {
	return r.effects.Remove(inst)
}

func (r *Resolver) prevented(id string) bool {
	return id != "" && r.effects.PreventsActions(id)
}

func characterID(c *character.Character) string {
	if c == nil {
		return ""
	}
	return c.ID
}
