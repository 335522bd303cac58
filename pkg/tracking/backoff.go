package tracking

import (
	"math"
	"time"
)

// Backoff computes the delay before the next retry attempt:
// Base * 2^retryCount, clamped at Max. The clamp keeps high retry counts from
// producing schedules so far out they are effectively dead without being
// marked as such.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff returns the production schedule: 2^n minutes capped at 6 hours.
func DefaultBackoff() Backoff {
	return Backoff{
		Base: time.Minute,
		Max:  6 * time.Hour,
	}
}

// Delay returns the wait before attempt retryCount+1, where retryCount is the
// number of failed attempts so far.
func (b Backoff) Delay(retryCount int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Minute
	}
	max := b.Max
	if max <= 0 {
		max = 6 * time.Hour
	}

	if retryCount < 0 {
		retryCount = 0
	}

	// Guard the shift against overflow before it happens; 2^30 minutes is
	// already far past any sane Max.
	if retryCount > 30 {
		return max
	}

	delay := time.Duration(math.Pow(2, float64(retryCount))) * base
	if delay > max {
		return max
	}
	return delay
}
