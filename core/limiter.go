package core

import (
	"fmt"
	"sync"
)

// ModelLimiter caps the number of model calls a single request may spend.
// Classification, per-task generation and synthesis all draw from the same
// budget, which keeps a runaway decomposition from looping on the provider.
type ModelLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewModelLimiter creates a limiter allowing at most max calls.
// max == 0 means unlimited.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Acquire consumes one call from the budget. It returns an error once the
// budget is exhausted; the call counter still advances so Count reflects
// attempted usage.
func (ml *ModelLimiter) Acquire() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("exceeded max model calls: %d", ml.max)
	}

	return nil
}

// Count returns the number of calls attempted so far.
func (ml *ModelLimiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	return ml.count
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (ml *ModelLimiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.max == 0 {
		return -1
	}

	if left := ml.max - ml.count; left > 0 {
		return left
	}
	return 0
}
