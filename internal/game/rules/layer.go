// Package rules holds the special rules layered on top of a primary roll.
// Rules never change how a roll is computed; they only ask for a follow-up
// attempt once the primary attempt has been resolved and published.
package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/vehicle"
	"github.com/cory-johannsen/roadwar/internal/invariant"
)

// Attempt is one resolved and published roll, as seen by the rules.
type Attempt struct {
	Kind              check.Kind
	Outcome           check.Outcome
	AttackerID        string
	Weapon            string
	Vehicle           *vehicle.Vehicle
	TargetComponentID string
	// Tag is empty for the primary attempt and the follow-up's tag otherwise.
	Tag string
}

// FollowUp asks the caller to roll again against a new target.
type FollowUp struct {
	Rule              string
	Tag               string
	TargetComponentID string
	// Penalty is added to the follow-up's bonuses as its own term.
	Penalty int
}

// Rule inspects a resolved attempt and may request a follow-up.
type Rule interface {
	Name() string
	FollowUp(a Attempt) (FollowUp, bool)
}

type entry struct {
	rule    Rule
	enabled bool
}

// Layer is an ordered set of individually toggleable rules.
type Layer struct {
	rules  []*entry
	guard  *invariant.Guard
	logger *zap.Logger
}

// NewLayer creates a Layer with rules enabled in the given order.
//
// Precondition: guard and logger must be non-nil.
func NewLayer(guard *invariant.Guard, logger *zap.Logger, rules ...Rule) *Layer {
	if guard == nil || logger == nil {
		panic("rules: NewLayer precondition violated: guard and logger must be non-nil")
	}
	l := &Layer{guard: guard, logger: logger}
	for _, r := range rules {
		l.Add(r)
	}
	return l
}

// Add appends r, enabled. A rule whose name is already present is ignored.
func (l *Layer) Add(r Rule) {
	if r == nil || l.find(r.Name()) != nil {
		return
	}
	l.rules = append(l.rules, &entry{rule: r, enabled: true})
}

// SetEnabled toggles the rule called name.
func (l *Layer) SetEnabled(name string, enabled bool) error {
	e := l.find(name)
	if e == nil {
		return fmt.Errorf("rules: unknown rule %q", name)
	}
	e.enabled = enabled
	return nil
}

// Enabled reports whether the rule called name is present and enabled.
func (l *Layer) Enabled(name string) bool {
	e := l.find(name)
	return e != nil && e.enabled
}

// Names returns every rule name in evaluation order.
func (l *Layer) Names() []string {
	out := make([]string, len(l.rules))
	for i, e := range l.rules {
		out[i] = e.rule.Name()
	}
	return out
}

func (l *Layer) find(name string) *entry {
	for _, e := range l.rules {
		if e.rule.Name() == name {
			return e
		}
	}
	return nil
}

// Begin starts a new flow for one primary attempt.
func (l *Layer) Begin() *Flow {
	return &Flow{layer: l, fired: make(map[string]bool)}
}

// FlowState is the position of a Flow.
type FlowState int

const (
	// FlowPrimary awaits the primary attempt.
	FlowPrimary FlowState = iota
	// FlowFollowUp awaits the follow-up a rule requested.
	FlowFollowUp
	// FlowResolved accepts no more attempts.
	FlowResolved
)

// String returns the lower-case state name.
func (s FlowState) String() string {
	switch s {
	case FlowPrimary:
		return "primary"
	case FlowFollowUp:
		return "follow_up"
	default:
		return "resolved"
	}
}

// Flow tracks one primary attempt and any follow-ups. Each rule fires at
// most once per flow.
type Flow struct {
	layer    *Layer
	state    FlowState
	fired    map[string]bool
	attempts []Attempt
	pending  *FollowUp
}

// State returns the flow position.
func (f *Flow) State() FlowState { return f.state }

// Attempts returns every recorded attempt in order.
func (f *Flow) Attempts() []Attempt {
	out := make([]Attempt, len(f.attempts))
	copy(out, f.attempts)
	return out
}

// Record registers a resolved attempt, which the caller must already have
// published, and returns the next follow-up if an enabled rule asks for one.
// Recording into a resolved flow is an invariant violation and is ignored.
func (f *Flow) Record(a Attempt) (FollowUp, bool) {
	if !f.layer.guard.Check(f.state != FlowResolved, "attempt recorded into a resolved rule flow",
		zap.String("tag", a.Tag)) {
		return FollowUp{}, false
	}
	if f.state == FlowFollowUp {
		f.layer.guard.Check(f.pending != nil && a.Tag == f.pending.Tag, "follow-up attempt does not match the pending request",
			zap.String("tag", a.Tag))
	}
	f.attempts = append(f.attempts, a)
	f.pending = nil

	for _, e := range f.layer.rules {
		name := e.rule.Name()
		if !e.enabled || f.fired[name] {
			continue
		}
		fu, ok := e.rule.FollowUp(a)
		if !ok {
			continue
		}
		if fu.Rule == "" {
			fu.Rule = name
		}
		f.fired[name] = true
		f.pending = &fu
		f.state = FlowFollowUp
		f.layer.logger.Debug("special rule requested follow-up",
			zap.String("rule", name),
			zap.String("tag", fu.Tag),
			zap.String("target", fu.TargetComponentID),
			zap.Int("penalty", fu.Penalty),
		)
		return fu, true
	}
	f.state = FlowResolved
	return FollowUp{}, false
}
