package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/roadwar/internal/game/combat"
	"github.com/cory-johannsen/roadwar/internal/game/event"
)

func TestNewSkirmish_OrdersByHandling(t *testing.T) {
	f := newFixture(t, 10, 10)
	raider := f.vehicle(t, "raider", "raider")
	alpha := f.vehicle(t, "interceptor", "alpha")

	s, err := combat.NewSkirmish(f.res, raider, alpha)
	require.NoError(t, err)

	order := s.Order()
	require.Len(t, order, 2)
	assert.Equal(t, "alpha", order[0].Vehicle.ID)
	assert.Equal(t, 12, order[0].Initiative)
	assert.Equal(t, "raider", order[1].Vehicle.ID)
	assert.Equal(t, 11, order[1].Initiative)
	assert.Len(t, f.rec.OfType(event.TypeSkillCheck), 2)
	assert.Equal(t, 1, s.Round)
}

func TestNewSkirmish_Errors(t *testing.T) {
	f := newFixture(t, 10)
	alpha := f.vehicle(t, "interceptor", "alpha")

	_, err := combat.NewSkirmish(f.res, alpha)
	assert.Error(t, err)
	_, err = combat.NewSkirmish(f.res, alpha, alpha)
	assert.Error(t, err)
	_, err = combat.NewSkirmish(f.res, alpha, nil)
	assert.Error(t, err)
	assert.Panics(t, func() { _, _ = combat.NewSkirmish(nil, alpha, alpha) })
}

func TestSkirmish_EndTurnTicksCurrentVehicleOnly(t *testing.T) {
	f := newFixture(t, 10, 10, 2)
	alpha := f.vehicle(t, "interceptor", "alpha")
	raider := f.vehicle(t, "raider", "raider")
	s, err := combat.NewSkirmish(f.res, alpha, raider)
	require.NoError(t, err)

	mara := f.board(t, alpha, "driver", "mara")
	shaken := f.res.ApplyStatusEffect(f.def(t, "shaken"), mara, "raider")
	burning := f.res.ApplyStatusEffect(f.def(t, "burning"), raider.PrimaryBody(), "alpha")

	require.Equal(t, "alpha", s.Current().ID)
	s.EndTurn()
	assert.Equal(t, 1, shaken.TurnsRemaining)
	assert.Equal(t, 3, burning.TurnsRemaining)
	assert.Equal(t, "raider", s.Current().ID)

	s.EndTurn()
	assert.Equal(t, 2, burning.TurnsRemaining)
	assert.Equal(t, 28, raider.PrimaryBody().Health, "1d4 fire doubled by vulnerability")
	assert.Equal(t, 2, s.Round)

	expired := s.EndTurn()
	require.Len(t, expired, 1)
	assert.Same(t, shaken, expired[0])
}

func TestSkirmish_SkipsWrecksAndEnds(t *testing.T) {
	f := newFixture(t, 10, 10)
	alpha := f.vehicle(t, "interceptor", "alpha")
	raider := f.vehicle(t, "raider", "raider")
	s, err := combat.NewSkirmish(f.res, alpha, raider)
	require.NoError(t, err)
	assert.False(t, s.Over())

	alpha.PrimaryBody().ApplyDamage(99)

	assert.Equal(t, "raider", s.Current().ID)
	assert.True(t, s.Over())
	require.Len(t, s.Standing(), 1)
	assert.Equal(t, "raider", s.Standing()[0].ID)
}
