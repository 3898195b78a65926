package clock

import "time"

// NowFunc returns current wall time. Override in tests for determinism.
// Wall time only stamps events; the simulated clock lives in the scheduler.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Since returns the wall time elapsed since t according to NowFunc.
func Since(t time.Time) time.Duration { return NowFunc().Sub(t) }
