package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/rules"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

// AttackRequest asks for one weapon attack against a target component.
type AttackRequest struct {
	Attacker *vehicle.Vehicle
	WeaponID string
	Target   *vehicle.Vehicle
	// TargetComponentID defaults to the target's primary body when empty.
	TargetComponentID string
	Situational       []check.Bonus
}

// AttackAttempt is one rolled attack: the primary attempt or a follow-up.
type AttackAttempt struct {
	Outcome           check.Outcome
	TargetComponentID string
	Tag               string
	// Reason names why the attempt auto-failed; empty otherwise.
	Reason string
	Damage []damage.Result
	Dealt  int
}

// AttackResult holds every attempt of one attack flow in order.
type AttackResult struct {
	AttackerID string
	GunnerID   string
	Weapon     string
	Attempts   []AttackAttempt
}

// Final returns the last attempt of the flow.
//
// Precondition: len(Attempts) >= 1.
func (r AttackResult) Final() AttackAttempt {
	return r.Attempts[len(r.Attempts)-1]
}

// Hit reports whether any attempt succeeded.
func (r AttackResult) Hit() bool {
	for _, a := range r.Attempts {
		if a.Outcome.Success() {
			return true
		}
	}
	return false
}

// Dealt returns the health removed across every attempt.
func (r AttackResult) Dealt() int {
	total := 0
	for _, a := range r.Attempts {
		total += a.Dealt
	}
	return total
}

// PerformAttack resolves a weapon attack, then lets the special rule layer
// request follow-ups. Every attempt is published before its damage is
// applied and before the rules see it.
//
// Postcondition: len(result.Attempts) >= 1; each attempt produced exactly one
// AttackRollEvent.
func (r *Resolver) PerformAttack(req AttackRequest) AttackResult {
	var weapon *vehicle.Component
	var gunner *character.Character
	if req.Attacker != nil {
		weapon = req.Attacker.Component(req.WeaponID)
		gunner = operator(req.Attacker, weapon)
	}
	result := AttackResult{
		GunnerID: characterID(gunner),
		Weapon:   req.WeaponID,
	}
	if req.Attacker != nil {
		result.AttackerID = req.Attacker.ID
	}
	if weapon != nil {
		result.Weapon = weapon.Name
	}

	targetID := req.TargetComponentID
	if targetID == "" && req.Target != nil {
		if pb := req.Target.PrimaryBody(); pb != nil {
			targetID = pb.ID
		}
	}

	flow := r.rules.Begin()
	tag, penalty := "", 0
	for {
		att := r.attempt(req, weapon, gunner, &result, targetID, tag, penalty)
		result.Attempts = append(result.Attempts, att)

		fu, ok := flow.Record(rules.Attempt{
			Kind:              check.KindAttack,
			Outcome:           att.Outcome,
			AttackerID:        result.AttackerID,
			Weapon:            result.Weapon,
			Vehicle:           req.Target,
			TargetComponentID: targetID,
			Tag:               tag,
		})
		if !ok {
			break
		}
		targetID, tag, penalty = fu.TargetComponentID, fu.Tag, fu.Penalty
	}
	return result
}

func (r *Resolver) attempt(req AttackRequest, weapon *vehicle.Component, gunner *character.Character,
	result *AttackResult, targetID, tag string, penalty int) AttackAttempt {
	var target *vehicle.Component
	if req.Target != nil {
		target = req.Target.Component(targetID)
	}
	att := AttackAttempt{TargetComponentID: targetID, Tag: tag}
	ev := event.AttackRollEvent{
		AttackerID: result.AttackerID,
		GunnerID:   result.GunnerID,
		TargetID:   targetID,
		Weapon:     result.Weapon,
		Tag:        tag,
	}
	if target != nil {
		ev.TargetID = target.EntityID()
	}

	if reason := r.blocked(req, weapon, gunner, target); reason != "" {
		ac := 0
		if target != nil {
			ac = r.Total(target, stat.ArmorClass).Total
		}
		att.Outcome = r.checks.AutoFail(check.KindAttack, ac)
		att.Reason = reason
		ev.Outcome = att.Outcome
		r.pub.Publish(ev)
		r.logger.Debug("attack auto-failed",
			zap.String("attacker", result.AttackerID),
			zap.String("weapon", req.WeaponID),
			zap.String("target", ev.TargetID),
			zap.String("reason", reason),
		)
		return att
	}

	bonuses := r.attackBonuses(weapon, gunner, req.Situational)
	if penalty != 0 {
		bonuses = append(bonuses, check.Bonus{Label: tag, Value: penalty})
	}
	att.Outcome = r.checks.Roll(check.KindAttack, bonuses, r.Total(target, stat.ArmorClass).Total)
	ev.Outcome = att.Outcome
	r.pub.Publish(ev)

	if !att.Outcome.Success() {
		return att
	}
	formulas := weapon.Weapons()
	if bonus := r.Total(weapon, stat.DamageBonus).Total; bonus != 0 {
		formulas = append(formulas, damage.Formula{
			Label:      "Damage Bonus",
			Bonus:      bonus,
			DamageType: formulas[0].DamageType,
		})
	}
	att.Damage, att.Dealt = r.deal(weapon.EntityID(), target, formulas, att.Outcome.CriticalHit(), tag)
	return att
}

// operator returns who fires weapon: the occupant of its seat, or the driver
// for a fixed mount no seat controls.
func operator(v *vehicle.Vehicle, weapon *vehicle.Component) *character.Character {
	if weapon == nil {
		return nil
	}
	if c := v.OperatorOf(weapon.ID); c != nil {
		return c
	}
	if pb := v.PrimaryBody(); weapon.Type == vehicle.Weapon && pb != nil {
		return v.OperatorOf(pb.ID)
	}
	return nil
}

// blocked returns the auto-fail reason for an attack, or "" when it may roll.
func (r *Resolver) blocked(req AttackRequest, weapon *vehicle.Component, gunner *character.Character, target *vehicle.Component) string {
	switch {
	case req.Attacker == nil || req.Target == nil:
		return routing.ReasonNoVehicle
	case weapon == nil:
		return routing.ReasonComponentMissing
	case weapon.Destroyed:
		return routing.ReasonComponentDestroyed
	case !weapon.Armed():
		return ReasonUnarmed
	case gunner == nil:
		return routing.ReasonNoOperator
	case gunner.IsIncapacitated():
		return routing.ReasonIncapacitated
	case r.prevented(weapon.EntityID()) || r.prevented(gunner.ID):
		return ReasonPrevented
	case target == nil:
		return routing.ReasonComponentMissing
	case target.Destroyed:
		return routing.ReasonComponentDestroyed
	default:
		return ""
	}
}

// attackBonuses orders the terms: weapon, gunner skill, gunner check
// modifiers, then situational bonuses.
func (r *Resolver) attackBonuses(weapon *vehicle.Component, gunner *character.Character, situational []check.Bonus) []check.Bonus {
	bonuses := []check.Bonus{{Label: weapon.Name, Value: r.Total(weapon, stat.AttackBonus).Total}}
	bonuses = append(bonuses, gunner.CheckBonuses(character.SkillTest{Skill: character.Gunnery})...)
	if v := r.Total(gunner, stat.CheckBonus).Total; v != 0 {
		bonuses = append(bonuses, check.Bonus{Label: "Check Bonus", Value: v})
	}
	return append(bonuses, situational...)
}
