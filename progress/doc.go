// Package progress keeps aggregated counters for a single scheduling run
// (records ready, done, slices served, preemptions, simulated clock) and
// notifies an optional observer after every change.
package progress
