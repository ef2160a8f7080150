package recommend

import (
	"fmt"
)

// Result size bounds. TopK is clamped into this range unless the caller
// opts out via RawTopK.
const (
	MinTopK     = 5
	MaxTopK     = 10
	DefaultTopK = 10
)

// Constraints are the structured, already-extracted request constraints.
// They live for a single request and are never persisted.
type Constraints struct {
	// MaxDurationMinutes drops items that take longer, when set.
	MaxDurationMinutes *int
	// CategoryRatio is the desired fraction of knowledge items in the
	// final list, in [0,1]. Nil means no preference: pure score order.
	CategoryRatio *float64
	// TopK is the requested result count, defaulting to DefaultTopK and
	// clamped to [MinTopK, MaxTopK].
	TopK int
	// RawTopK disables clamping. It exists for offline evaluation runs
	// that need an exact K; service callers must leave it unset.
	RawTopK bool
}

// Validate rejects malformed constraints before pipeline entry.
func (c *Constraints) Validate() error {
	if c.MaxDurationMinutes != nil && *c.MaxDurationMinutes < 0 {
		return fmt.Errorf("%w: max duration must not be negative, got %d",
			ErrInvalidConstraints, *c.MaxDurationMinutes)
	}
	if c.CategoryRatio != nil && (*c.CategoryRatio < 0 || *c.CategoryRatio > 1) {
		return fmt.Errorf("%w: category ratio must be within [0,1], got %g",
			ErrInvalidConstraints, *c.CategoryRatio)
	}
	if c.TopK < 0 {
		return fmt.Errorf("%w: top_k must not be negative, got %d",
			ErrInvalidConstraints, c.TopK)
	}
	return nil
}

// EffectiveTopK resolves the requested result count, applying the default
// and the [MinTopK, MaxTopK] clamp unless RawTopK is set.
func (c *Constraints) EffectiveTopK() int {
	k := c.TopK
	if k == 0 {
		k = DefaultTopK
	}
	if c.RawTopK {
		return k
	}
	if k < MinTopK {
		k = MinTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}
	return k
}
