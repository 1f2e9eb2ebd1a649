package rules

import (
	"go.uber.org/zap"
)

// Hooks runs content-authored scripts. *scripting.Manager satisfies it.
type Hooks interface {
	Call(scope, hook string, args map[string]any) (any, error)
}

// HookScope is the script scope rule hooks are looked up in.
const HookScope = "rules"

// ScriptedRule delegates the follow-up decision to a Lua function. The
// function receives the attempt as a table and returns either nil/false, or
// a table {retry = true, tag = ..., target = ..., penalty = ...}. Omitted
// target keeps the original component; omitted tag uses the hook name.
type ScriptedRule struct {
	hook   string
	hooks  Hooks
	logger *zap.Logger
}

// NewScriptedRule creates a rule backed by the Lua function hook.
//
// Precondition: hook must be non-empty; hooks and logger must be non-nil.
func NewScriptedRule(hook string, hooks Hooks, logger *zap.Logger) *ScriptedRule {
	if hook == "" || hooks == nil || logger == nil {
		panic("rules: NewScriptedRule precondition violated: hook, hooks and logger are required")
	}
	return &ScriptedRule{hook: hook, hooks: hooks, logger: logger}
}

func (r *ScriptedRule) Name() string { return r.hook }

func (r *ScriptedRule) FollowUp(a Attempt) (FollowUp, bool) {
	args := map[string]any{
		"kind":      a.Kind.String(),
		"success":   a.Outcome.Success(),
		"auto_fail": a.Outcome.AutoFail(),
		"critical":  a.Outcome.CriticalHit(),
		"fumble":    a.Outcome.Fumble(),
		"base_roll": a.Outcome.BaseRoll(),
		"total":     a.Outcome.Total(),
		"target":    a.Outcome.Target(),
		"attacker":  a.AttackerID,
		"weapon":    a.Weapon,
		"component": a.TargetComponentID,
		"tag":       a.Tag,
	}
	if a.Vehicle != nil {
		args["vehicle"] = a.Vehicle.ID
		if pb := a.Vehicle.PrimaryBody(); pb != nil {
			args["primary_body"] = pb.ID
		}
	}
	ret, err := r.hooks.Call(HookScope, r.hook, args)
	if err != nil {
		r.logger.Warn("scripted rule failed", zap.String("rule", r.hook), zap.Error(err))
		return FollowUp{}, false
	}
	m, ok := ret.(map[string]any)
	if !ok {
		return FollowUp{}, false
	}
	if retry, _ := m["retry"].(bool); !retry {
		return FollowUp{}, false
	}
	fu := FollowUp{Rule: r.hook, Tag: r.hook, TargetComponentID: a.TargetComponentID}
	if tag, ok := m["tag"].(string); ok && tag != "" {
		fu.Tag = tag
	}
	if target, ok := m["target"].(string); ok && target != "" {
		fu.TargetComponentID = target
	}
	if penalty, ok := m["penalty"].(float64); ok {
		fu.Penalty = int(penalty)
	}
	return fu, true
}
