// Package invariant reports programming errors detected at resolution time.
//
// In strict mode (development) a violation panics so it is caught immediately.
// Otherwise it is logged at error level and the caller degrades to a no-op.
package invariant

import (
	"fmt"

	"go.uber.org/zap"
)

// Guard checks invariants and reacts according to its mode.
type Guard struct {
	strict bool
	logger *zap.Logger
}

// NewGuard creates a Guard.
//
// Precondition: logger must be non-nil.
func NewGuard(strict bool, logger *zap.Logger) *Guard {
	if logger == nil {
		panic("invariant: NewGuard precondition violated: logger must be non-nil")
	}
	return &Guard{strict: strict, logger: logger}
}

// Lenient returns a non-strict Guard that discards its diagnostics.
func Lenient() *Guard {
	return &Guard{logger: zap.NewNop()}
}

// Strict reports whether violations panic.
func (g *Guard) Strict() bool { return g.strict }

// Check reports a violation when ok is false. It returns ok so callers can
// write `if !guard.Check(cond, "...") { return }`.
func (g *Guard) Check(ok bool, msg string, fields ...zap.Field) bool {
	if ok {
		return true
	}
	if g.strict {
		panic(fmt.Sprintf("invariant violated: %s", msg))
	}
	g.logger.Error("invariant violated", append([]zap.Field{zap.String("invariant", msg)}, fields...)...)
	return false
}
