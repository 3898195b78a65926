// Package scheduler implements the Round-Robin engine: a pure step function
// (RunSlice, Commit) and a paced control loop that owns the Ready, Running
// and Done containers and the simulated clock.
//
// A single goroutine per run is the only writer. Observers receive value
// snapshots through listeners after every transition and may issue Toggle
// or Start from any goroutine. Load discards an in-flight run.
package scheduler
