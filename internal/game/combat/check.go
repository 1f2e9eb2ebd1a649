package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// SaveRequest asks for a saving throw by whoever Spec routes to.
type SaveRequest struct {
	Spec               routing.Spec
	Vehicle            *vehicle.Vehicle
	NominalComponentID string
	InitiatorID        string
	Situational        []check.Bonus
}

// CheckRequest asks for a skill or attribute check by whoever Spec routes to.
type CheckRequest struct {
	Spec               routing.Spec
	Vehicle            *vehicle.Vehicle
	NominalComponentID string
	InitiatorID        string
	Situational        []check.Bonus
}

// SaveResult is the outcome of a saving throw plus the routing that chose
// who rolled it.
type SaveResult struct {
	Outcome check.Outcome
	Route   routing.Result
	// Reason is the routing or behavior reason for an auto-fail.
	Reason string
}

// CheckResult is the outcome of a skill check plus its routing.
type CheckResult struct {
	Outcome check.Outcome
	Route   routing.Result
	Reason  string
}

// PerformSave routes req and rolls a saving throw against dc. A request that
// cannot be routed auto-fails and still publishes a SavingThrowEvent.
func (r *Resolver) PerformSave(req SaveRequest, dc int) SaveResult {
	route := r.router.Route(req.Spec, graph(req.Vehicle, req.NominalComponentID, req.InitiatorID))
	out, reason := r.resolve(check.KindSave, req.Spec, route, req.Situational, dc)
	r.pub.Publish(event.SavingThrowEvent{
		ActorID: actorID(route, req.Vehicle),
		Spec:    label(req.Spec),
		Reason:  reason,
		Outcome: out,
	})
	return SaveResult{Outcome: out, Route: route, Reason: reason}
}

// PerformSkillCheck routes req and rolls a check against dc. Actors under an
// effect that prevents actions auto-fail, as do chassis-bound vehicle checks
// while the primary body is pinned.
func (r *Resolver) PerformSkillCheck(req CheckRequest, dc int) CheckResult {
	route := r.router.Route(req.Spec, graph(req.Vehicle, req.NominalComponentID, req.InitiatorID))
	out, reason := r.resolve(check.KindSkillCheck, req.Spec, route, req.Situational, dc)
	r.pub.Publish(event.SkillCheckEvent{
		ActorID: actorID(route, req.Vehicle),
		Spec:    label(req.Spec),
		Reason:  reason,
		Outcome: out,
	})
	return CheckResult{Outcome: out, Route: route, Reason: reason}
}

func (r *Resolver) resolve(kind check.Kind, spec routing.Spec, route routing.Result, situational []check.Bonus, dc int) (check.Outcome, string) {
	if !route.CanAttempt {
		return r.checks.AutoFail(kind, dc), route.Reason
	}
	if kind == check.KindSkillCheck {
		if reason := r.restrained(spec, route); reason != "" {
			r.logger.Debug("check auto-failed by status effect",
				zap.String("spec", label(spec)),
				zap.String("reason", reason),
			)
			return r.checks.AutoFail(kind, dc), reason
		}
	}

	modifierAttr := stat.CheckBonus
	if kind == check.KindSave {
		modifierAttr = stat.SaveBonus
	}
	var bonuses []check.Bonus
	var holder stat.Participant
	switch s := spec.(type) {
	case routing.VehicleSpec:
		holder = route.Component
		bonuses = append(bonuses, check.Bonus{Label: s.Label(), Value: r.Total(route.Component, s.Attribute).Total})
		if s.Attribute == modifierAttr {
			holder = nil
		}
	case routing.CharacterSpec:
		holder = route.Character
		if kind == check.KindSave {
			bonuses = route.Character.SaveBonuses(s.Test)
		} else {
			bonuses = route.Character.CheckBonuses(s.Test)
		}
	}
	if holder != nil {
		if v := r.Total(holder, modifierAttr).Total; v != 0 {
			bonuses = append(bonuses, check.Bonus{Label: modifierLabel(modifierAttr), Value: v})
		}
	}
	bonuses = append(bonuses, situational...)
	return r.checks.Roll(kind, bonuses, dc), ""
}

// restrained returns why the routed actor cannot act, or "".
func (r *Resolver) restrained(spec routing.Spec, route routing.Result) string {
	if route.Character != nil && r.prevented(route.Character.ID) {
		return ReasonPrevented
	}
	if route.Component == nil {
		return ""
	}
	if r.prevented(route.Component.EntityID()) {
		return ReasonPrevented
	}
	if s, ok := spec.(routing.VehicleSpec); ok && vehicle.ChassisBound(s.Attribute) &&
		r.effects.PreventsMovement(route.Component.EntityID()) {
		return ReasonImmobilized
	}
	return ""
}

func graph(v *vehicle.Vehicle, nominal, initiator string) routing.Graph {
	return routing.Graph{Vehicle: v, NominalComponentID: nominal, InitiatorID: initiator}
}

func actorID(route routing.Result, v *vehicle.Vehicle) string {
	switch {
	case route.Character != nil:
		return route.Character.ID
	case route.Component != nil:
		return route.Component.EntityID()
	case v != nil:
		return v.ID
	default:
		return ""
	}
}

func label(spec routing.Spec) string {
	if spec == nil {
		return "none"
	}
	return spec.Label()
}

func modifierLabel(attr stat.Attribute) string {
	if attr == stat.SaveBonus {
		return "Save Bonus"
	}
	return "Check Bonus"
}
