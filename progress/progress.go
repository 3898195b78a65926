package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/rrsim/internal/clock"
)

// Delta represents an incremental counter change emitted by the scheduler.
// Fields are signed so a record moving between containers is one delta.
type Delta struct {
	Total       int
	Ready       int
	Running     int
	Done        int
	Slices      int
	Preemptions int
	Clock       int
}

// Progress keeps aggregated counters for one run. It is safe for
// concurrent use.
type Progress struct {
	BatchID   string
	StartedAt time.Time

	Total       int
	Ready       int
	Running     int
	Done        int
	Slices      int
	Preemptions int
	Clock       int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta. The onChange callback, if any, receives
// a copy taken under the lock and runs outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.Total += d.Total
	p.Ready += d.Ready
	p.Running += d.Running
	p.Done += d.Done
	p.Slices += d.Slices
	p.Preemptions += d.Preemptions
	p.Clock += d.Clock
	snapshot := p.copyLocked()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) copyLocked() Progress {
	return Progress{
		BatchID:     p.BatchID,
		StartedAt:   p.StartedAt,
		Total:       p.Total,
		Ready:       p.Ready,
		Running:     p.Running,
		Done:        p.Done,
		Slices:      p.Slices,
		Preemptions: p.Preemptions,
		Clock:       p.Clock,
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copyLocked()
}

// Percent returns the share of records done, in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

// Elapsed returns wall time since the run started.
func (p Progress) Elapsed() time.Duration {
	if p.StartedAt.IsZero() {
		return 0
	}
	return clock.Since(p.StartedAt)
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, batchID string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		BatchID:   batchID,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
