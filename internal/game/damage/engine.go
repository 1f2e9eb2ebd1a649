package damage

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

// SourceRoll is the audit record of one rolled formula.
type SourceRoll struct {
	Label   string
	Dice    int
	DieSize int
	Bonus   int
	Rolled  []int
}

// Total returns the rolled dice plus the flat bonus.
func (s SourceRoll) Total() int {
	total := s.Bonus
	for _, d := range s.Rolled {
		total += d
	}
	return total
}

// Result is the resolved damage of one damage type.
//
// Invariant: FinalDamage == max(0, Resistance.Apply(RawTotal())).
type Result struct {
	DamageType  string
	Sources     []SourceRoll
	Resistance  Resistance
	Critical    bool
	FinalDamage int
}

// RawTotal returns the pre-resistance total of every source.
func (r Result) RawTotal() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Total()
	}
	return total
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("damage_type", r.DamageType)
	enc.AddInt("raw", r.RawTotal())
	enc.AddString("resistance", r.Resistance.String())
	enc.AddBool("critical", r.Critical)
	enc.AddInt("final", r.FinalDamage)
	return nil
}

// Finalize assembles a Result from already-rolled sources.
func Finalize(damageType string, sources []SourceRoll, res Resistance, critical bool) Result {
	r := Result{
		DamageType: damageType,
		Sources:    sources,
		Resistance: res,
		Critical:   critical,
	}
	r.FinalDamage = res.Apply(r.RawTotal())
	if r.FinalDamage < 0 {
		r.FinalDamage = 0
	}
	return r
}

// Engine rolls damage formulas.
type Engine struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: roller and logger must be non-nil.
func NewEngine(roller *dice.Roller, logger *zap.Logger) *Engine {
	if roller == nil || logger == nil {
		panic("damage: NewEngine precondition violated: roller and logger must be non-nil")
	}
	return &Engine{roller: roller, logger: logger}
}

// Compute rolls one formula and applies resistance. A critical hit doubles
// the number of dice, never the flat bonus.
//
// Postcondition: Result.FinalDamage >= 0.
func (e *Engine) Compute(f Formula, res Resistance, critical bool) Result {
	return Finalize(f.DamageType, []SourceRoll{e.roll(f, critical)}, res, critical)
}

// ComputeAll resolves composite damage. Formulas are grouped by damage type in
// first-seen order; each group resolves and resists independently.
func (e *Engine) ComputeAll(formulas []Formula, resistanceFor func(damageType string) Resistance, critical bool) []Result {
	var order []string
	grouped := make(map[string][]SourceRoll)
	for _, f := range formulas {
		if _, seen := grouped[f.DamageType]; !seen {
			order = append(order, f.DamageType)
		}
		grouped[f.DamageType] = append(grouped[f.DamageType], e.roll(f, critical))
	}
	out := make([]Result, 0, len(order))
	for _, dt := range order {
		res := Normal
		if resistanceFor != nil {
			res = resistanceFor(dt)
		}
		out = append(out, Finalize(dt, grouped[dt], res, critical))
	}
	return out
}

func (e *Engine) roll(f Formula, critical bool) SourceRoll {
	src := SourceRoll{Label: f.Label, Dice: f.Dice, DieSize: f.DieSize, Bonus: f.Bonus, Rolled: []int{}}
	if f.IsEmpty() {
		e.logger.Warn("damage formula has no dice and no bonus",
			zap.String("label", f.Label),
			zap.String("damage_type", f.DamageType),
		)
		return src
	}
	if f.Dice > 0 && f.DieSize < 1 {
		e.logger.Warn("damage formula has dice but no die size; dice ignored",
			zap.String("label", f.Label),
			zap.Int("dice", f.Dice),
		)
		src.Dice = 0
		return src
	}
	count := f.Dice
	if critical {
		count *= 2
	}
	src.Dice = count
	src.Rolled = e.roller.RollN(count, f.DieSize).Dice
	return src
}
