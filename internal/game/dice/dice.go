// Package dice provides the randomness abstraction and roll-result types
// shared by the check and damage engines.
package dice

import "fmt"

// D20 is the number of faces on the resolution die.
const D20 = 20

// Source is the randomness provider for dice rolls.
//
// Implementations used by the resolution core are called from a single
// goroutine; Sources shared across goroutines must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Die rolls a single die with the given number of sides.
//
// Precondition: sides >= 1; src must be non-nil.
// Postcondition: 1 <= result <= sides.
func Die(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results kept after any keep-highest filter
	Modifier   int    // flat modifier (may be negative)
}

// Sum returns the sum of the kept dice, without the modifier.
func (r RollResult) Sum() int {
	sum := 0
	for _, d := range r.Dice {
		sum += d
	}
	return sum
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == r.Sum() + r.Modifier.
func (r RollResult) Total() int {
	return r.Sum() + r.Modifier
}

// String returns an audit string in the format "2d6+3 → [4 5] +3 = 12".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
