package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

func newEngine(policy check.Policy, faces ...int) *check.Engine {
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(faces...), zap.NewNop())
	return check.NewEngine(roller, policy, zap.NewNop())
}

func TestRoll_TotalIsBasePlusBonuses(t *testing.T) {
	e := newEngine(check.DefaultPolicy(), 10)
	o := e.Roll(check.KindSkillCheck, []check.Bonus{{"Dexterity", 3}, {"Proficiency", 3}}, 15)
	assert.Equal(t, 10, o.BaseRoll())
	assert.Equal(t, 16, o.Total())
	assert.Equal(t, 6, o.BonusTotal())
	assert.True(t, o.Success())
	assert.False(t, o.CriticalHit())
	assert.False(t, o.Fumble())
	assert.False(t, o.AutoFail())
	assert.Equal(t, check.KindSkillCheck, o.Kind())
	assert.Equal(t, "d20 10 +3 Dexterity +3 Proficiency = 16 vs 15: success", o.String())
}

func TestRoll_Natural20_AlwaysSucceeds(t *testing.T) {
	o := newEngine(check.DefaultPolicy(), 20).Roll(check.KindAttack, []check.Bonus{{"Penalty", -10}}, 30)
	assert.True(t, o.Success())
	assert.True(t, o.CriticalHit())
	assert.Less(t, o.Total(), o.Target())
}

func TestRoll_Natural1_AlwaysFails(t *testing.T) {
	o := newEngine(check.DefaultPolicy(), 1).Roll(check.KindAttack, []check.Bonus{{"Bonus", 30}}, 10)
	assert.False(t, o.Success())
	assert.True(t, o.Fumble())
	assert.GreaterOrEqual(t, o.Total(), o.Target())
}

func TestRoll_PolicyDisabledForSaves(t *testing.T) {
	policy := check.Policy{Attack: true}
	o := newEngine(policy, 1).Roll(check.KindSave, []check.Bonus{{"Mobility", 15}}, 12)
	assert.True(t, o.Success(), "natural 1 does not override saves when the policy is off")
	assert.False(t, o.Fumble())

	o = newEngine(policy, 20).Roll(check.KindSkillCheck, nil, 25)
	assert.False(t, o.Success())
	assert.False(t, o.CriticalHit())
}

func TestAutoFail_Shape(t *testing.T) {
	e := newEngine(check.DefaultPolicy(), 20)
	o := e.AutoFail(check.KindSave, 14)
	assert.Equal(t, 0, o.BaseRoll())
	assert.Empty(t, o.Bonuses())
	assert.NotNil(t, o.Bonuses())
	assert.False(t, o.Success())
	assert.True(t, o.AutoFail())
	assert.Equal(t, 14, o.Target())
	assert.Equal(t, "auto-fail vs 14", o.String())
}

func TestOutcome_BonusesAreCopied(t *testing.T) {
	in := []check.Bonus{{"Gunnery", 4}}
	o := check.Resolve(check.KindAttack, 10, in, 12, check.DefaultPolicy())
	in[0].Value = 99
	got := o.Bonuses()
	got[0].Value = -99
	assert.Equal(t, 4, o.Bonuses()[0].Value)
	assert.Equal(t, 14, o.Total())
}

func TestEngine_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(12), zap.NewNop())
	e := check.NewEngine(roller, check.DefaultPolicy(), zap.New(core))
	e.Roll(check.KindAttack, []check.Bonus{{"Weapon", 2}}, 13)
	entries := logs.FilterMessage("check resolved").All()
	require.Len(t, entries, 1)
	outcome, ok := entries[0].ContextMap()["outcome"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 14, outcome["total"])
	assert.Equal(t, true, outcome["success"])
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "attack", check.KindAttack.String())
	assert.Equal(t, "save", check.KindSave.String())
	assert.Equal(t, "skill_check", check.KindSkillCheck.String())
	assert.Equal(t, "unknown", check.Kind(42).String())
}

func TestProperty_RollBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		e := check.NewEngine(roller, check.DefaultPolicy(), zap.NewNop())
		o := e.Roll(check.KindAttack, nil, 10)
		assert.GreaterOrEqual(rt, o.BaseRoll(), 1)
		assert.LessOrEqual(rt, o.BaseRoll(), 20)
	})
}

func TestProperty_NaturalPrecedence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		natural := rapid.IntRange(1, 20).Draw(rt, "natural")
		bonus := rapid.IntRange(-30, 30).Draw(rt, "bonus")
		target := rapid.IntRange(-10, 40).Draw(rt, "target")
		o := check.Resolve(check.KindAttack, natural, []check.Bonus{{"b", bonus}}, target, check.DefaultPolicy())
		switch natural {
		case 20:
			assert.True(rt, o.Success())
		case 1:
			assert.False(rt, o.Success())
		default:
			assert.Equal(rt, o.Total() >= target, o.Success())
		}
	})
}

func TestNewEngine_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { check.NewEngine(nil, check.DefaultPolicy(), zap.NewNop()) })
}
