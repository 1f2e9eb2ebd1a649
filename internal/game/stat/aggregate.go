package stat

import "math"

// Participant is anything that owns base attribute values and a modifier list.
type Participant interface {
	// BaseValue returns the stored base value for attr and whether one is defined.
	BaseValue(attr Attribute) (float64, bool)
	// Modifiers returns the participant's own modifier list.
	Modifiers() *Set
}

// AuxiliarySource supplies modifiers that apply to a participant without being
// stored on it, such as equipment grants from a sibling component.
type AuxiliarySource interface {
	AuxiliaryModifiers(p Participant, attr Attribute) []Modifier
}

// Breakdown is the audit view of one aggregated attribute.
type Breakdown struct {
	Attribute Attribute
	Base      float64
	Modifiers []Modifier
	Total     int
}

// Compute applies mods to base: every Flat modifier is summed onto the base,
// then every Multiplier is applied in list order. The result is not rounded.
// Modifiers are expected to already be filtered to one attribute.
func Compute(base float64, mods []Modifier) float64 {
	flat := base
	for _, m := range mods {
		if m.Kind == Flat {
			flat += m.Value
		}
	}
	result := flat
	for _, m := range mods {
		if m.Kind == Multiplier {
			result *= m.Value
		}
	}
	return result
}

// Round converts an aggregated value to an integer stat, rounding to nearest.
func Round(v float64) int {
	return int(math.Round(v))
}

// Aggregator totals attributes for participants. Sources registered on the
// Aggregator apply to every participant; extra sources passed to Total apply
// to that call only.
type Aggregator struct {
	aux []AuxiliarySource
}

// NewAggregator creates an Aggregator with global auxiliary sources.
func NewAggregator(aux ...AuxiliarySource) *Aggregator {
	return &Aggregator{aux: aux}
}

// Total aggregates attr for p.
//
// Precondition: p must be non-nil.
// Postcondition: Total == Round(Compute(Base, Modifiers)); a missing base value counts as 0.
func (a *Aggregator) Total(p Participant, attr Attribute, extra ...AuxiliarySource) Breakdown {
	base, _ := p.BaseValue(attr)
	mods := p.Modifiers().For(attr)
	for _, src := range append(append([]AuxiliarySource{}, a.aux...), extra...) {
		if src == nil {
			continue
		}
		for _, m := range src.AuxiliaryModifiers(p, attr) {
			if m.Attribute == attr {
				mods = append(mods, m)
			}
		}
	}
	return Breakdown{
		Attribute: attr,
		Base:      base,
		Modifiers: mods,
		Total:     Round(Compute(base, mods)),
	}
}
