// Package main runs a scripted two-vehicle skirmish through the resolution
// core and logs the resulting event feed. With the journal enabled every
// event is also persisted to PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/config"
	"github.com/cory-johannsen/roadwar/internal/engine"
	"github.com/cory-johannsen/roadwar/internal/game/character"
	"github.com/cory-johannsen/roadwar/internal/game/combat"
	"github.com/cory-johannsen/roadwar/internal/game/dice"
	"github.com/cory-johannsen/roadwar/internal/game/routing"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
	"github.com/cory-johannsen/roadwar/internal/observability"
	"github.com/cory-johannsen/roadwar/internal/storage/postgres"
)

// pilotingDC is the Piloting check a driver must pass to hit the nitro.
const pilotingDC = 14

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seed := flag.Uint64("seed", 0, "dice seed for a reproducible run; 0 uses crypto randomness")
	maxRounds := flag.Int("rounds", 10, "round cap")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}

	eng, err := engine.New(cfg, src, logger)
	if err != nil {
		logger.Fatal("building resolution core", zap.Error(err))
	}
	defer eng.Close()

	var (
		pool    *postgres.Pool
		journal *postgres.Journal
	)
	if cfg.Journal.Enabled {
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		journal = postgres.NewJournal(pool.DB(), cfg.Journal.Timeout, logger)
		eng.Bus.Subscribe(journal.Handle)
		logger.Info("journaling events", zap.String("session", journal.Session().String()))
	}

	alpha := mustVehicle(eng, logger, "interceptor", "alpha", map[string]string{"driver": "mara", "gunner": "jax"})
	raider := mustVehicle(eng, logger, "raider", "raider", map[string]string{"driver": "rook", "gunner": "wren"})

	s, err := combat.NewSkirmish(eng.Resolver, alpha, raider)
	if err != nil {
		logger.Fatal("starting skirmish", zap.Error(err))
	}
	for _, e := range s.Order() {
		logger.Info("initiative", zap.String("vehicle", e.Vehicle.ID), zap.Int("total", e.Initiative))
	}

	for !s.Over() && s.Round <= *maxRounds {
		v := s.Current()
		takeTurn(eng, logger, v, opponent(s, v))
		s.EndTurn()
	}

	for _, v := range []*vehicle.Vehicle{alpha, raider} {
		logger.Info("final state",
			zap.String("vehicle", v.ID),
			zap.Bool("wrecked", v.Wrecked()),
			zap.Int("health", v.PrimaryBody().Health),
		)
	}
	logger.Info("skirmish over", zap.Int("rounds", s.Round), zap.Int("standing", len(s.Standing())))

	if journal != nil {
		counts, err := postgres.CountByType(ctx, pool.DB(), journal.Session())
		if err != nil {
			logger.Error("summarising journal", zap.Error(err))
			return
		}
		for typ, n := range counts {
			logger.Info("journaled", zap.String("type", string(typ)), zap.Int("events", n))
		}
	}
}

func mustVehicle(eng *engine.Engine, logger *zap.Logger, templateID, id string, crew map[string]string) *vehicle.Vehicle {
	v, err := eng.Vehicle(templateID, id)
	if err != nil {
		logger.Fatal("building vehicle", zap.String("template", templateID), zap.Error(err))
	}
	for seat, crewID := range crew {
		if _, err := eng.Board(v, seat, crewID); err != nil {
			logger.Fatal("boarding crew", zap.String("vehicle", id), zap.String("crew", crewID), zap.Error(err))
		}
	}
	return v
}

func opponent(s *combat.Skirmish, v *vehicle.Vehicle) *vehicle.Vehicle {
	for _, o := range s.Standing() {
		if o != v {
			return o
		}
	}
	return nil
}

// takeTurn has the driver try for the nitro, then fires every armed component
// at the opponent's weapons first. A fire hit sets the struck component burning.
func takeTurn(eng *engine.Engine, logger *zap.Logger, v, target *vehicle.Vehicle) {
	if target == nil {
		return
	}
	res := eng.Resolver.PerformSkillCheck(combat.CheckRequest{
		Spec: routing.CharacterSpec{
			Test:              character.SkillTest{Skill: character.Piloting},
			RequiredComponent: vehicle.Chassis,
		},
		Vehicle: v,
	}, pilotingDC)
	if res.Outcome.Success() {
		if def, err := eng.Effect("nitro"); err == nil {
			eng.Resolver.ApplyStatusEffect(def, v.PrimaryBody(), v.ID)
		}
	}

	for _, c := range v.Components() {
		if !c.Armed() || c.Destroyed {
			continue
		}
		attack := eng.Resolver.PerformAttack(combat.AttackRequest{
			Attacker:          v,
			WeaponID:          c.ID,
			Target:            target,
			TargetComponentID: aimAt(target),
		})
		if !attack.Hit() {
			continue
		}
		final := attack.Final()
		for _, d := range final.Damage {
			if d.DamageType != "fire" {
				continue
			}
			struck := target.Component(final.TargetComponentID)
			if def, err := eng.Effect("burning"); err == nil && struck != nil && !struck.Destroyed {
				eng.Resolver.ApplyStatusEffect(def, struck, c.EntityID())
			}
			break
		}
		logger.Debug("attack landed",
			zap.String("weapon", attack.Weapon),
			zap.String("target", final.TargetComponentID),
			zap.Int("dealt", attack.Dealt()),
		)
	}
}

// aimAt picks the first intact armed component, or the primary body.
func aimAt(v *vehicle.Vehicle) string {
	for _, c := range v.Components() {
		if c.Armed() && !c.Destroyed {
			return c.ID
		}
	}
	return v.PrimaryBody().ID
}
