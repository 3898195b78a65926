package render

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/event"
)

// ChartWidth is the longest turnaround bar in cells
const ChartWidth = 40

// Renderer writes snapshots to a terminal as they are published
type Renderer struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *SliceBar
	last   model.Snapshot
}

// New creates a renderer writing to w
func New(w io.Writer) *Renderer {
	return &Renderer{writer: w, bar: NewSliceBar(w)}
}

// Listen renders one event; ticks only advance the slice bar. It has the
// signature of a scheduler listener.
func (r *Renderer) Listen(_ context.Context, evt *event.Event[model.Snapshot]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = evt.Data
	switch evt.Type() {
	case event.TypeDispatched, event.TypeTick:
		_ = r.bar.Update(evt.Data.Slice)
		return
	}
	_ = r.bar.Finish()
	switch evt.Type() {
	case event.TypeCompleted:
		fmt.Fprintln(r.writer, Panels(&evt.Data))
		fmt.Fprintln(r.writer, Chart(model.Turnaround(evt.Data.Done), ChartWidth))
	case event.TypePaused, event.TypeResumed, event.TypeDiscarded:
		fmt.Fprintln(r.writer, Header(&evt.Data))
	default:
		fmt.Fprintln(r.writer, Panels(&evt.Data))
	}
}

// Last returns the most recently rendered snapshot
func (r *Renderer) Last() model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
