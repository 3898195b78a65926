package scheduler

import "github.com/viant/rrsim/model"

// Disposition tells where a record goes after a completed slice
type Disposition int

const (
	// DispositionRequeue sends the record back to the tail of Ready
	DispositionRequeue Disposition = iota
	// DispositionFinalize appends the record to Done
	DispositionFinalize
)

// RunSlice returns how many units p runs once dispatched: everything that is
// left for a non-preemptible record, at most one quantum otherwise.
func RunSlice(p *model.Process, quantum int) int {
	if !p.Preemptible {
		return p.RemainingService
	}
	if quantum < 1 {
		quantum = 1
	}
	return min(p.RemainingService, quantum)
}

// Commit applies a completed slice to p and returns the advanced clock with
// the record's disposition. A finalized record gets its finish time.
func Commit(p *model.Process, slice, clock int) (int, Disposition) {
	p.ServiceCount++
	p.RemainingService -= slice
	clock += slice
	if p.Preemptible && p.RemainingService > 0 {
		p.State = model.ProcessStateReady
		return clock, DispositionRequeue
	}
	finish := clock
	p.FinishTime = &finish
	p.State = model.ProcessStateDone
	return clock, DispositionFinalize
}
