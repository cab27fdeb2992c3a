package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck flags a goroutine leak: it fails once the live
// goroutine count climbs past threshold.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when any recorded stop-the-world pause was longer
// than threshold, a proxy for heap pressure.
func GCMaxPauseCheck(threshold time.Duration) CheckFunc {
	return func(_ context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)

		var worst time.Duration
		for _, pause := range stats.Pause {
			if pause > worst {
				worst = pause
			}
		}
		if worst > threshold {
			return errors.Errorf("GC pause %s exceeds threshold %s", worst, threshold)
		}
		return nil
	}
}
