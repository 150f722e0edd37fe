package utils

import (
	"context"
	"math/rand"
	"time"
)

// Delay sleeps for a random duration between min and max so request timing
// does not form a fixed pattern. It returns early if ctx is cancelled, and
// immediately when the resolved duration is zero or negative.
func Delay(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
