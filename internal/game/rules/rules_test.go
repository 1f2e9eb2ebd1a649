package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/dice"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/rules"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
	"github.com/cory-johannsen/roadwar/internal/invariant"
	"github.com/cory-johannsen/roadwar/internal/scripting"
)

func interceptor(t testing.TB) *vehicle.Vehicle {
	t.Helper()
	tmpls, err := vehicle.LoadTemplates("../../../content/vehicles")
	require.NoError(t, err)
	v, err := vehicle.Build(tmpls["interceptor"], "bravo")
	require.NoError(t, err)
	return v
}

func attack(v *vehicle.Vehicle, component string, natural, bonus, target int) rules.Attempt {
	return rules.Attempt{
		Kind:              check.KindAttack,
		Outcome:           check.Resolve(check.KindAttack, natural, []check.Bonus{{Label: "Weapon", Value: bonus}}, target, check.DefaultPolicy()),
		AttackerID:        "alpha/turret",
		Weapon:            "Twin MG",
		Vehicle:           v,
		TargetComponentID: component,
	}
}

func layer(rs ...rules.Rule) *rules.Layer {
	return rules.NewLayer(invariant.Lenient(), zap.NewNop(), rs...)
}

func TestComponentFallback_MissOnComponent(t *testing.T) {
	v := interceptor(t)
	fu, ok := rules.NewComponentFallback(5).FollowUp(attack(v, "turret", 5, 4, 16))
	require.True(t, ok)
	assert.Equal(t, "chassis", fu.TargetComponentID)
	assert.Equal(t, -5, fu.Penalty)
	assert.Equal(t, event.TagFallback, fu.Tag)
}

func TestComponentFallback_DoesNotFire(t *testing.T) {
	v := interceptor(t)
	r := rules.NewComponentFallback(rules.DefaultFallbackPenalty)

	_, ok := r.FollowUp(attack(v, "turret", 15, 4, 16))
	assert.False(t, ok, "hit")
	_, ok = r.FollowUp(attack(v, "chassis", 2, 4, 16))
	assert.False(t, ok, "primary body was the target")

	a := attack(v, "turret", 2, 4, 16)
	a.Tag = event.TagFallback
	_, ok = r.FollowUp(a)
	assert.False(t, ok, "follow-ups do not chain")

	a = attack(v, "turret", 2, 4, 16)
	a.Outcome = check.AutoFail(check.KindAttack, 16)
	_, ok = r.FollowUp(a)
	assert.False(t, ok, "auto-fail")

	a = attack(v, "turret", 2, 4, 16)
	a.Kind = check.KindSave
	_, ok = r.FollowUp(a)
	assert.False(t, ok, "not an attack")

	v.PrimaryBody().ApplyDamage(999)
	_, ok = r.FollowUp(attack(v, "turret", 2, 4, 16))
	assert.False(t, ok, "primary body destroyed")
}

func TestFlow_FallbackOnce(t *testing.T) {
	v := interceptor(t)
	l := layer(rules.NewComponentFallback(5))
	flow := l.Begin()
	assert.Equal(t, rules.FlowPrimary, flow.State())

	fu, ok := flow.Record(attack(v, "turret", 5, 4, 16))
	require.True(t, ok)
	assert.Equal(t, rules.FlowFollowUp, flow.State())

	follow := attack(v, fu.TargetComponentID, 3, 4, 12)
	follow.Tag = fu.Tag
	_, ok = flow.Record(follow)
	assert.False(t, ok)
	assert.Equal(t, rules.FlowResolved, flow.State())
	assert.Len(t, flow.Attempts(), 2)
}

func TestFlow_RecordAfterResolved(t *testing.T) {
	v := interceptor(t)
	flow := layer().Begin()
	_, ok := flow.Record(attack(v, "turret", 5, 4, 16))
	assert.False(t, ok)
	assert.Equal(t, rules.FlowResolved, flow.State())

	_, ok = flow.Record(attack(v, "turret", 5, 4, 16))
	assert.False(t, ok)
	assert.Len(t, flow.Attempts(), 1)

	strict := rules.NewLayer(invariant.NewGuard(true, zap.NewNop()), zap.NewNop()).Begin()
	strict.Record(attack(v, "turret", 5, 4, 16))
	assert.Panics(t, func() { strict.Record(attack(v, "turret", 5, 4, 16)) })
}

func TestLayer_Toggle(t *testing.T) {
	v := interceptor(t)
	l := layer(rules.NewComponentFallback(5), rules.NewComponentFallback(3))
	assert.Equal(t, []string{rules.ComponentFallbackName}, l.Names(), "duplicate names ignored")
	require.NoError(t, l.SetEnabled(rules.ComponentFallbackName, false))
	assert.False(t, l.Enabled(rules.ComponentFallbackName))
	_, ok := l.Begin().Record(attack(v, "turret", 5, 4, 16))
	assert.False(t, ok)
	assert.Error(t, l.SetEnabled("nope", true))
}

type fixedRule struct {
	name string
	fu   rules.FollowUp
}

func (r fixedRule) Name() string                                  { return r.name }
func (r fixedRule) FollowUp(rules.Attempt) (rules.FollowUp, bool) { return r.fu, true }

func TestFlow_EachRuleFiresAtMostOnce_Property(t *testing.T) {
	v := interceptor(t)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(rt, "rules")
		var rs []rules.Rule
		for i := 0; i < n; i++ {
			name := string(rune('a' + i))
			rs = append(rs, fixedRule{name: name, fu: rules.FollowUp{Tag: name, TargetComponentID: "chassis"}})
		}
		flow := layer(rs...).Begin()
		a := attack(v, "turret", 5, 4, 16)
		fired := map[string]int{}
		for {
			fu, ok := flow.Record(a)
			if !ok {
				break
			}
			fired[fu.Rule]++
			a.Tag = fu.Tag
		}
		assert.Len(rt, fired, n)
		for _, c := range fired {
			assert.Equal(rt, 1, c)
		}
		assert.Equal(rt, rules.FlowResolved, flow.State())
		assert.Len(rt, flow.Attempts(), n+1)
	})
}

func TestScriptedRule_Sideswipe(t *testing.T) {
	logger := zap.NewNop()
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSequenceSource(1), logger), logger)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, "../../../content/scripts/rules", 0))
	r := rules.NewScriptedRule("sideswipe", mgr, logger)
	v := interceptor(t)

	a := attack(v, "turret", 10, 3, 15)
	a.Weapon = "Spiked Ram"
	fu, ok := r.FollowUp(a)
	require.True(t, ok)
	assert.Equal(t, "sideswipe", fu.Tag)
	assert.Equal(t, "turret", fu.TargetComponentID)
	assert.Equal(t, -2, fu.Penalty)

	a = attack(v, "turret", 5, 3, 15)
	a.Weapon = "Spiked Ram"
	_, ok = r.FollowUp(a)
	assert.False(t, ok, "missed by more than two")

	_, ok = r.FollowUp(attack(v, "turret", 10, 3, 15))
	assert.False(t, ok, "not a ram")
}

type errHooks struct{}

func (errHooks) Call(string, string, map[string]any) (any, error) {
	return nil, assert.AnError
}

func TestScriptedRule_ErrorMeansNoFollowUp(t *testing.T) {
	r := rules.NewScriptedRule("x", errHooks{}, zap.NewNop())
	_, ok := r.FollowUp(attack(interceptor(t), "turret", 5, 4, 16))
	assert.False(t, ok)
}
