package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/roadwar/internal/config"
	"github.com/cory-johannsen/roadwar/internal/engine"
	"github.com/cory-johannsen/roadwar/internal/game/combat"
	"github.com/cory-johannsen/roadwar/internal/game/dice"
	"github.com/cory-johannsen/roadwar/internal/game/event"
)

func testConfig() config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "debug", Format: "console", Events: "info"},
		Rules: config.RulesConfig{
			NaturalRolls: config.NaturalRollsConfig{Attack: true, Save: true, SkillCheck: true},
			Fallback:     config.FallbackConfig{Enabled: true, Penalty: -5},
			Scripted:     []string{"sideswipe"},
		},
		Content: config.ContentConfig{
			VehiclesDir:      "../../content/vehicles",
			CrewDir:          "../../content/crew",
			EffectsDir:       "../../content/effects",
			RuleScriptsDir:   "../../content/scripts/rules",
			EffectScriptsDir: "../../content/scripts/effects",
		},
	}
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	assert.Panics(t, func() { _, _ = engine.New(testConfig(), nil, zap.NewNop()) })
	assert.Panics(t, func() { _, _ = engine.New(testConfig(), dice.NewSequenceSource(1), nil) })
}

func TestNew_ScriptedSideswipe(t *testing.T) {
	e, err := engine.New(testConfig(), dice.NewSequenceSource(9, 15, 6), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	raider, err := e.Vehicle("raider", "raider")
	require.NoError(t, err)
	_, err = e.Board(raider, "driver", "rook")
	require.NoError(t, err)
	alpha, err := e.Vehicle("interceptor", "alpha")
	require.NoError(t, err)

	res := e.Resolver.PerformAttack(combat.AttackRequest{Attacker: raider, WeaponID: "ram", Target: alpha})

	require.Len(t, res.Attempts, 2)
	assert.Equal(t, 13, res.Attempts[0].Outcome.Total())
	assert.Equal(t, 14, res.Attempts[0].Outcome.Target())
	assert.Equal(t, "sideswipe", res.Attempts[1].Tag)
	assert.Equal(t, "chassis", res.Attempts[1].TargetComponentID)
	assert.Equal(t, 17, res.Attempts[1].Outcome.Total())
	assert.True(t, res.Hit())
	assert.Equal(t, 4, res.Dealt(), "1d10+2 halved by the kinetic-resistant chassis")
	assert.Equal(t, 36, alpha.PrimaryBody().Health)
}

func TestNew_FallbackDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Fallback.Enabled = false
	cfg.Rules.Scripted = nil
	e, err := engine.New(cfg, dice.NewSequenceSource(5), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	alpha, err := e.Vehicle("interceptor", "alpha")
	require.NoError(t, err)
	_, err = e.Board(alpha, "gunner", "jax")
	require.NoError(t, err)
	bravo, err := e.Vehicle("interceptor", "bravo")
	require.NoError(t, err)

	res := e.Resolver.PerformAttack(combat.AttackRequest{
		Attacker: alpha, WeaponID: "turret", Target: bravo, TargetComponentID: "turret",
	})
	assert.Len(t, res.Attempts, 1)
	assert.False(t, res.Hit())
}

func TestNew_LogsEventsAtConfiguredLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := testConfig()
	cfg.Logging.Events = "warn"
	e, err := engine.New(cfg, dice.NewSequenceSource(10), zap.New(core))
	require.NoError(t, err)
	defer e.Close()

	e.Bus.Publish(event.ResourceChangedEvent{TargetID: "alpha/chassis", Resource: event.ResourceHealth, Before: 40, After: 30})

	entries := logs.FilterMessage("combat event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestNew_EventLoggingDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := testConfig()
	cfg.Logging.Events = ""
	e, err := engine.New(cfg, dice.NewSequenceSource(10), zap.New(core))
	require.NoError(t, err)
	defer e.Close()

	e.Bus.Publish(event.ResourceChangedEvent{TargetID: "alpha/chassis", Resource: event.ResourceHealth, Before: 40, After: 30})
	assert.Zero(t, logs.FilterMessage("combat event").Len())
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Scripted = []string{"no_such_rule"}
	_, err := engine.New(cfg, dice.NewSequenceSource(1), zap.NewNop())
	assert.ErrorContains(t, err, "no_such_rule")

	cfg = testConfig()
	cfg.Content.VehiclesDir = "/nonexistent"
	_, err = engine.New(cfg, dice.NewSequenceSource(1), zap.NewNop())
	assert.ErrorContains(t, err, "loading vehicles")

	cfg = testConfig()
	cfg.Content.RuleScriptsDir = "/nonexistent"
	_, err = engine.New(cfg, dice.NewSequenceSource(1), zap.NewNop())
	assert.ErrorContains(t, err, "loading rule scripts")
}

func TestEngine_Lookups(t *testing.T) {
	e, err := engine.New(testConfig(), dice.NewSequenceSource(1), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Vehicle("hovercraft", "x")
	assert.Error(t, err)
	v, err := e.Vehicle("raider", "r")
	require.NoError(t, err)
	_, err = e.Board(v, "driver", "nobody")
	assert.Error(t, err)
	_, err = e.Board(v, "roof", "rook")
	assert.Error(t, err)
	_, err = e.Effect("frozen")
	assert.Error(t, err)
	def, err := e.Effect("burning")
	require.NoError(t, err)
	assert.Equal(t, "Burning", def.Name)
}
