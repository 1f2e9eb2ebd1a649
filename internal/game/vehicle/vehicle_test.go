package vehicle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
)

func loadInterceptor(t *testing.T) vehicle.Template {
	t.Helper()
	tmpls, err := vehicle.LoadTemplates("../../../content/vehicles")
	require.NoError(t, err)
	tmpl, ok := tmpls["interceptor"]
	require.True(t, ok)
	return tmpl
}

func build(t *testing.T) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.Build(loadInterceptor(t), "alpha")
	require.NoError(t, err)
	return v
}

func crew(t *testing.T, id string) *character.Character {
	t.Helper()
	c, err := character.Build(character.Template{ID: id, Name: id, Level: 1, MaxHealth: 10})
	require.NoError(t, err)
	return c
}

func TestLoadTemplates_Interceptor(t *testing.T) {
	tmpl := loadInterceptor(t)
	assert.Equal(t, "Interceptor", tmpl.Name)
	require.Len(t, tmpl.Components, 4)
	assert.Equal(t, vehicle.Turret, tmpl.Components[1].Type)
	require.Len(t, tmpl.Components[1].Weapons, 1)
	assert.Equal(t, damage.Formula{Label: "Twin MG", Dice: 2, DieSize: 6, Bonus: 1, DamageType: "kinetic"}, tmpl.Components[1].Weapons[0])
	assert.Equal(t, damage.Resistant, tmpl.Components[0].Resistances["kinetic"])
}

func TestBuild_PrimaryBodyAndBaseValues(t *testing.T) {
	v := build(t)
	pb := v.PrimaryBody()
	require.NotNil(t, pb)
	assert.Equal(t, "chassis", pb.ID)
	assert.Equal(t, "alpha/chassis", pb.EntityID())

	ac, ok := pb.BaseValue(stat.ArmorClass)
	assert.True(t, ok)
	assert.Equal(t, 12.0, ac)
	hp, ok := pb.BaseValue(stat.MaxHealth)
	assert.True(t, ok)
	assert.Equal(t, 40.0, hp)
	_, ok = pb.BaseValue(stat.AttackBonus)
	assert.False(t, ok)
	assert.Equal(t, 10, v.Component("reactor").Energy)
}

func TestBuild_DoesNotShareStateWithTemplate(t *testing.T) {
	tmpl := loadInterceptor(t)
	a, err := vehicle.Build(tmpl, "a")
	require.NoError(t, err)
	b, err := vehicle.Build(tmpl, "b")
	require.NoError(t, err)
	a.PrimaryBody().ApplyDamage(100)
	assert.True(t, a.Wrecked())
	assert.False(t, b.Wrecked())
	assert.Equal(t, 40, tmpl.Components[0].MaxHealth)
}

func TestAuxiliaryModifiers_SiblingGrant(t *testing.T) {
	v := build(t)
	agg := stat.NewAggregator(v)
	assert.Equal(t, 14, agg.Total(v.PrimaryBody(), stat.ArmorClass).Total)
	assert.Equal(t, 16, agg.Total(v.Component("turret"), stat.ArmorClass).Total, "grant targets chassis only")

	v.Component("plating").ApplyDamage(10)
	assert.Equal(t, 12, agg.Total(v.PrimaryBody(), stat.ArmorClass).Total, "destroyed components grant nothing")
}

func TestAuxiliaryModifiers_ForeignParticipant(t *testing.T) {
	a := build(t)
	b := build(t)
	assert.Empty(t, a.AuxiliaryModifiers(b.PrimaryBody(), stat.ArmorClass))
}

func TestBoard(t *testing.T) {
	v := build(t)
	mara := crew(t, "mara")
	require.NoError(t, v.Board("driver", mara))
	assert.Equal(t, "driver", v.SeatOf("mara").ID)

	require.NoError(t, v.Board("gunner", mara))
	assert.Equal(t, "gunner", v.SeatOf("mara").ID)
	assert.Nil(t, v.Seat("driver").Occupant)
	assert.Equal(t, mara, v.OperatorOf("turret"))

	assert.Error(t, v.Board("gunner", crew(t, "jax")))
	assert.Error(t, v.Board("trunk", crew(t, "jax")))
	assert.Error(t, v.Board("driver", nil))
}

func TestValidate_CollectsProblems(t *testing.T) {
	err := vehicle.Template{
		ID: "broken",
		Components: []vehicle.ComponentTemplate{
			{ID: "gun", Type: vehicle.Weapon, MaxHealth: 0, Base: map[string]float64{"luck": 1}},
			{ID: "gun", Type: vehicle.Weapon, MaxHealth: 5},
		},
		Seats: []vehicle.SeatTemplate{{ID: "s", Controls: "missing"}},
	}.Validate()
	require.Error(t, err)
	for _, want := range []string{"chassis", "duplicate", "max_health", "luck", "missing"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadTemplates_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("id: x\nwheels: 4\n"), 0o644))
	_, err := vehicle.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestChassisBound(t *testing.T) {
	assert.True(t, vehicle.ChassisBound(stat.Speed))
	assert.True(t, vehicle.ChassisBound(stat.Mobility))
	assert.True(t, vehicle.ChassisBound(stat.Handling))
	assert.False(t, vehicle.ChassisBound(stat.ArmorClass))
}

func TestComponent_ResourcesClamp_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v, err := vehicle.Build(vehicle.Template{
			ID:         "x",
			Components: []vehicle.ComponentTemplate{{ID: "c", Type: vehicle.Chassis, MaxHealth: 20, MaxEnergy: 10}},
		}, "")
		require.NoError(rt, err)
		c := v.PrimaryBody()
		for i, n := 0, rapid.IntRange(1, 10).Draw(rt, "ops"); i < n; i++ {
			amt := rapid.IntRange(0, 30).Draw(rt, "amt")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				c.ApplyDamage(amt)
			case 1:
				c.Heal(amt)
			default:
				c.AdjustEnergy(amt - 15)
			}
			assert.GreaterOrEqual(rt, c.Health, 0)
			assert.LessOrEqual(rt, c.Health, c.MaxHealth)
			assert.GreaterOrEqual(rt, c.Energy, 0)
			assert.LessOrEqual(rt, c.Energy, c.MaxEnergy)
			assert.Equal(rt, c.Health == 0, c.Destroyed)
		}
	})
}

func TestHeal_CapFollowsMaxHealthModifiers(t *testing.T) {
	v := build(t)
	pb := v.PrimaryBody()
	pb.ApplyDamage(10)
	pb.Modifiers().Add(stat.NewModifier(stat.MaxHealth, stat.Multiplier, 1.5, "field repair", stat.CategoryStatusEffect))
	assert.Equal(t, 60, pb.EffectiveMaxHealth())

	before, after := pb.Heal(100)
	assert.Equal(t, 30, before)
	assert.Equal(t, 60, after)
}
