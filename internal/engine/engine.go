// Package engine assembles the resolution core from configuration and
// authored content.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/config"
	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/combat"
	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/dice"
	"github.com/cory-johannsen/roadwar/internal/game/effect"
	"github.com/cory-johannsen/roadwar/internal/game/event"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/rules"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
	"github.com/cory-johannsen/roadwar/internal/invariant"
	"github.com/cory-johannsen/roadwar/internal/observability"
	"github.com/cory-johannsen/roadwar/internal/scripting"
)

// Engine owns a wired Resolver together with the content it was built from.
type Engine struct {
	Resolver *combat.Resolver
	Bus      *event.Bus
	Effects  *effect.Registry
	Vehicles map[string]vehicle.Template
	Crew     map[string]character.Template

	scripts *scripting.Manager
}

// New loads content and scripts named by cfg and wires the resolution core
// onto a fresh event bus. Combat events are logged at cfg.Logging.Events.
//
// Precondition: src and logger must be non-nil; cfg must have passed Validate.
// Postcondition: Returns a ready Engine or a non-nil error. The caller must Close it.
func New(cfg config.Config, src dice.Source, logger *zap.Logger) (*Engine, error) {
	if src == nil || logger == nil {
		panic("engine: New precondition violated: src and logger must be non-nil")
	}
	start := time.Now()

	effects, err := effect.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}
	vehicles, err := vehicle.LoadTemplates(cfg.Content.VehiclesDir)
	if err != nil {
		return nil, fmt.Errorf("loading vehicles: %w", err)
	}
	crew, err := character.LoadTemplates(cfg.Content.CrewDir)
	if err != nil {
		return nil, fmt.Errorf("loading crew: %w", err)
	}

	roller := dice.NewLoggedRoller(src, logger)
	scripts := scripting.NewManager(roller, logger)
	if err := loadScripts(scripts, cfg); err != nil {
		scripts.Close()
		return nil, err
	}

	ruleset, err := buildRules(cfg.Rules, scripts, logger)
	if err != nil {
		scripts.Close()
		return nil, err
	}

	bus := event.NewBus()
	level, ok, err := observability.EventLevel(cfg.Logging)
	if err != nil {
		scripts.Close()
		return nil, err
	}
	if ok {
		bus.Subscribe(event.LogSubscriber(logger, level))
	}

	guard := invariant.NewGuard(cfg.Rules.StrictInvariants, logger)
	dmg := damage.NewEngine(roller, logger)
	var opts []effect.Option
	if cfg.Content.EffectScriptsDir != "" {
		opts = append(opts, effect.WithHooks(scripts))
	}
	policy := check.Policy{
		Attack:     cfg.Rules.NaturalRolls.Attack,
		Save:       cfg.Rules.NaturalRolls.Save,
		SkillCheck: cfg.Rules.NaturalRolls.SkillCheck,
	}

	resolver := combat.NewResolver(combat.Deps{
		Checks:    check.NewEngine(roller, policy, logger),
		Damage:    dmg,
		Router:    routing.NewRouter(logger),
		Rules:     rules.NewLayer(guard, logger, ruleset...),
		Effects:   effect.NewRuntime(dmg, bus, guard, logger, opts...),
		Publisher: bus,
		Logger:    logger,
	})

	logger.Info("resolution core ready",
		zap.Int("vehicles", len(vehicles)),
		zap.Int("crew", len(crew)),
		zap.Int("effects", len(effects.All())),
		zap.Int("rules", len(ruleset)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Engine{
		Resolver: resolver,
		Bus:      bus,
		Effects:  effects,
		Vehicles: vehicles,
		Crew:     crew,
		scripts:  scripts,
	}, nil
}

func loadScripts(m *scripting.Manager, cfg config.Config) error {
	limit := cfg.Rules.ScriptInstructionLimit
	if dir := cfg.Content.RuleScriptsDir; dir != "" {
		if err := m.LoadScope(scripting.ScopeRules, dir, limit); err != nil {
			return fmt.Errorf("loading rule scripts: %w", err)
		}
	}
	if dir := cfg.Content.EffectScriptsDir; dir != "" {
		if err := m.LoadScope(scripting.ScopeEffects, dir, limit); err != nil {
			return fmt.Errorf("loading effect scripts: %w", err)
		}
	}
	return nil
}

// buildRules returns the fallback rule, when enabled, followed by one
// scripted rule per configured hook in order.
func buildRules(cfg config.RulesConfig, scripts *scripting.Manager, logger *zap.Logger) ([]rules.Rule, error) {
	var out []rules.Rule
	if cfg.Fallback.Enabled {
		out = append(out, rules.NewComponentFallback(cfg.Fallback.Penalty))
	}
	for _, hook := range cfg.Scripted {
		if !scripts.Has(scripting.ScopeRules, hook) {
			return nil, fmt.Errorf("rule hook %q is not defined in the rule scripts", hook)
		}
		out = append(out, rules.NewScriptedRule(hook, scripts, logger))
	}
	return out, nil
}

// Vehicle builds a fresh vehicle from the named template.
func (e *Engine) Vehicle(templateID, instanceID string) (*vehicle.Vehicle, error) {
	tmpl, ok := e.Vehicles[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown vehicle template %q", templateID)
	}
	return vehicle.Build(tmpl, instanceID)
}

// Board builds the named crew member and seats them on v.
func (e *Engine) Board(v *vehicle.Vehicle, seatID, crewID string) (*character.Character, error) {
	tmpl, ok := e.Crew[crewID]
	if !ok {
		return nil, fmt.Errorf("unknown crew member %q", crewID)
	}
	c, err := character.Build(tmpl)
	if err != nil {
		return nil, err
	}
	if err := v.Board(seatID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Effect returns the named status effect definition.
func (e *Engine) Effect(id string) (*effect.Definition, error) {
	def, ok := e.Effects.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown status effect %q", id)
	}
	return def, nil
}

// Close releases the Lua VMs.
func (e *Engine) Close() {
	e.scripts.Close()
}
