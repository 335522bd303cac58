package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	b := tracking.DefaultBackoff()

	tests := []struct {
		name       string
		retryCount int
		want       time.Duration
	}{
		{"first retry", 0, time.Minute},
		{"second retry", 1, 2 * time.Minute},
		{"third retry", 2, 4 * time.Minute},
		{"fifth retry", 4, 16 * time.Minute},
		{"clamped at max", 10, 6 * time.Hour}, // 2^10 minutes > 6h
		{"far past the shift guard", 64, 6 * time.Hour},
		{"negative treated as zero", -1, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, b.Delay(tt.retryCount))
		})
	}
}

func TestBackoffDelayCustomSchedule(t *testing.T) {
	t.Parallel()

	b := tracking.Backoff{Base: time.Second, Max: 10 * time.Second}

	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 10*time.Second, b.Delay(5))
}

func TestBackoffZeroValueUsesDefaults(t *testing.T) {
	t.Parallel()

	var b tracking.Backoff
	assert.Equal(t, time.Minute, b.Delay(0))
	assert.Equal(t, 6*time.Hour, b.Delay(30))
}
