package rules

import (
	"github.com/cory-johannsen/roadwar/internal/game/check"
	"github.com/cory-johannsen/roadwar/internal/game/event"
)

// DefaultFallbackPenalty is the penalty applied to a fallback attack.
const DefaultFallbackPenalty = -5

// ComponentFallbackName is the rule name of ComponentFallback.
const ComponentFallbackName = "component_fallback"

// ComponentFallback retries a missed attack on a non-primary component once
// against the primary body of the same vehicle, with a penalty.
type ComponentFallback struct {
	Penalty int
}

// NewComponentFallback creates the rule. A positive penalty is negated.
func NewComponentFallback(penalty int) ComponentFallback {
	if penalty > 0 {
		penalty = -penalty
	}
	return ComponentFallback{Penalty: penalty}
}

func (ComponentFallback) Name() string { return ComponentFallbackName }

// FollowUp fires only for a rolled primary attack that missed a component
// other than an intact primary body.
func (r ComponentFallback) FollowUp(a Attempt) (FollowUp, bool) {
	if a.Kind != check.KindAttack || a.Tag != "" || a.Vehicle == nil {
		return FollowUp{}, false
	}
	if a.Outcome.Success() || a.Outcome.AutoFail() {
		return FollowUp{}, false
	}
	pb := a.Vehicle.PrimaryBody()
	if pb == nil || pb.Destroyed || pb.ID == a.TargetComponentID {
		return FollowUp{}, false
	}
	return FollowUp{
		Rule:              ComponentFallbackName,
		Tag:               event.TagFallback,
		TargetComponentID: pb.ID,
		Penalty:           r.Penalty,
	}, true
}
