package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/rrsim/internal/idgen"
	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/progress"
	"github.com/viant/rrsim/service/event"
	"github.com/viant/rrsim/tracing"
)

// Listener receives every published snapshot. It runs on the goroutine that
// caused the transition, so it must not block for long and must not call
// Load or Close synchronously. The event is shared between listeners and
// must be treated as read-only.
type Listener func(ctx context.Context, evt *event.Event[model.Snapshot])

// Engine is the Round-Robin scheduling engine
type Engine struct {
	config Config
	logger *slog.Logger

	// control serializes Load, Start and Close
	control     sync.Mutex
	listenersMu sync.RWMutex
	listeners   []Listener

	mu sync.RWMutex
	// seq orders published snapshots; it only grows
	seq     uint64
	batchID string
	quantum int
	state   model.RunState
	ready   []*model.Process
	running *model.Process
	done    []*model.Process
	clock   int
	slice   *model.Slice
	gate    *gate
	runCtx  context.Context
	cancel  context.CancelFunc
	exited  chan struct{}
}

// New creates an idle engine with an empty batch
func New(options ...Option) (*Engine, error) {
	ret := &Engine{
		config: DefaultConfig(),
		state:  model.RunStateIdle,
		gate:   newGate(),
		runCtx: context.Background(),
		exited: closedChannel(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	ret.quantum = ret.config.Quantum
	return ret, nil
}

func closedChannel() chan struct{} {
	ret := make(chan struct{})
	close(ret)
	return ret
}

// AddListener registers a transition listener
func (e *Engine) AddListener(listener Listener) {
	if listener == nil {
		return
	}
	e.listenersMu.Lock()
	e.listeners = append(e.listeners, listener)
	e.listenersMu.Unlock()
}

// Quantum returns the quantum applied to the next slice
func (e *Engine) Quantum() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.quantum
}

// SetQuantum changes the quantum for subsequent slices and loads. Records
// already loaded keep their total service.
func (e *Engine) SetQuantum(quantum int) error {
	if quantum <= 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidQuantum, quantum)
	}
	e.mu.Lock()
	e.quantum = quantum
	e.mu.Unlock()
	return nil
}

// State returns the current run state
func (e *Engine) State() model.RunState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Snapshot returns a deep copy of the simulation state
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() model.Snapshot {
	ret := model.Snapshot{
		BatchID: e.batchID,
		State:   e.state,
		Quantum: e.quantum,
		Clock:   e.clock,
		Ready:   model.CloneAll(e.ready),
		Running: e.running.Clone(),
		Done:    model.CloneAll(e.done),
	}
	if e.slice != nil {
		slice := *e.slice
		ret.Slice = &slice
	}
	return ret
}

// publishLocked returns a snapshot for listeners with its sequence number
func (e *Engine) publishLocked() (model.Snapshot, uint64) {
	e.seq++
	return e.snapshotLocked(), e.seq
}

// Load replaces the batch with records built from rows using the current
// quantum. An in-flight run is discarded unconditionally.
func (e *Engine) Load(ctx context.Context, rows []*model.Row) error {
	batch, err := model.NewBatch(rows, e.Quantum())
	if err != nil {
		return err
	}
	e.control.Lock()
	defer e.control.Unlock()

	if discarded, seq, ok := e.stop(); ok {
		e.logger.Info("discarding run", slog.String("batch", discarded.BatchID), slog.Int("clock", discarded.Clock))
		e.emit(ctx, event.TypeDiscarded, nil, discarded, seq)
	}

	e.mu.Lock()
	e.batchID = idgen.NewBatchID()
	e.ready = batch
	e.running = nil
	e.done = nil
	e.clock = 0
	e.slice = nil
	e.state = model.RunStateIdle
	e.gate = newGate()
	snapshot, seq := e.publishLocked()
	e.mu.Unlock()

	e.logger.Debug("batch loaded", slog.String("batch", snapshot.BatchID), slog.Int("records", len(batch)))
	e.emit(ctx, event.TypeLoaded, nil, snapshot, seq)
	return nil
}

// Start begins a run over a freshly loaded batch; it returns false while
// simulating, when Ready is empty, or when a closed run left partly served
// records behind (Load the batch again first). The run outlives ctx
// cancellation but keeps its values (tracing span, progress tracker).
func (e *Engine) Start(ctx context.Context) bool {
	e.control.Lock()
	defer e.control.Unlock()

	e.mu.Lock()
	if e.state.IsSimulating() || len(e.ready) == 0 || len(e.done) > 0 || e.clock > 0 {
		e.mu.Unlock()
		return false
	}
	e.running = nil
	e.slice = nil
	e.state = model.RunStateRunning
	e.gate = newGate()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.runCtx = runCtx
	e.cancel = cancel
	exited := make(chan struct{})
	e.exited = exited
	g := e.gate
	total := len(e.ready)
	snapshot, seq := e.publishLocked()
	e.mu.Unlock()

	e.logger.Info("run started", slog.String("batch", snapshot.BatchID), slog.Int("records", total), slog.Int("quantum", snapshot.Quantum))
	progress.UpdateCtx(runCtx, progress.Delta{Total: total, Ready: total})
	e.emit(runCtx, event.TypeStarted, nil, snapshot, seq)
	go e.run(runCtx, g, exited)
	return true
}

// Toggle pauses a running loop or resumes a paused one; it returns false
// when nothing is simulating.
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	var eventType event.Type
	switch e.state {
	case model.RunStateRunning:
		e.state = model.RunStatePaused
		e.gate.Pause()
		eventType = event.TypePaused
	case model.RunStatePaused:
		e.state = model.RunStateRunning
		e.gate.Resume()
		eventType = event.TypeResumed
	default:
		e.mu.Unlock()
		return false
	}
	ctx := e.runCtx
	snapshot, seq := e.publishLocked()
	e.mu.Unlock()

	e.logger.Debug("run toggled", slog.String("type", string(eventType)), slog.Int("clock", snapshot.Clock))
	e.emit(ctx, eventType, nil, snapshot, seq)
	return true
}

// Wait blocks until the current run exits or ctx is done
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.RLock()
	exited := e.exited
	e.mu.RUnlock()
	select {
	case <-exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops an in-flight run. The record in flight goes back to the head
// of Ready with its partial slice uncounted and the engine becomes idle;
// Start refuses the leftover batch until the next Load.
func (e *Engine) Close() error {
	e.control.Lock()
	defer e.control.Unlock()
	e.stop()
	return nil
}

// stop cancels the loop and waits for it to exit. It returns the state the
// run was in when it was still simulating.
func (e *Engine) stop() (model.Snapshot, uint64, bool) {
	e.mu.Lock()
	cancel, exited := e.cancel, e.exited
	e.cancel = nil
	e.mu.Unlock()
	if cancel == nil {
		return model.Snapshot{}, 0, false
	}
	cancel()
	<-exited

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsSimulating() {
		return model.Snapshot{}, 0, false
	}
	interrupted, seq := e.publishLocked()
	if e.running != nil {
		e.running.State = model.ProcessStateReady
		e.ready = append([]*model.Process{e.running}, e.ready...)
		e.running = nil
	}
	e.slice = nil
	e.state = model.RunStateIdle
	e.runCtx = context.Background()
	return interrupted, seq, true
}

func (e *Engine) run(ctx context.Context, g *gate, exited chan struct{}) {
	defer close(exited)
	ctx, span := tracing.StartSpan(ctx, "scheduler.Run")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	p := &pacer{tick: e.config.TickUnits, unit: e.config.UnitDuration, gate: g}
	for {
		if err = g.Wait(ctx); err != nil {
			return
		}
		pid, slice, snapshot, seq, ok := e.dispatch()
		if !ok {
			return
		}
		progress.UpdateCtx(ctx, progress.Delta{Ready: -1, Running: 1})
		e.emit(ctx, event.TypeDispatched, &pid, snapshot, seq)

		if err = e.serve(ctx, p, pid, slice); err != nil {
			return
		}
		if finished := e.complete(ctx, slice); finished {
			return
		}
	}
}

// dispatch moves the head of Ready into the Running slot
func (e *Engine) dispatch() (int, int, model.Snapshot, uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ready) == 0 {
		e.state = model.RunStateFinished
		return 0, 0, model.Snapshot{}, 0, false
	}
	head := e.ready[0]
	e.ready[0] = nil
	e.ready = e.ready[1:]
	head.State = model.ProcessStateRunning
	e.running = head
	slice := RunSlice(head, e.quantum)
	e.slice = &model.Slice{PID: head.PID, Length: slice}
	snapshot, seq := e.publishLocked()
	return head.PID, slice, snapshot, seq, true
}

func (e *Engine) serve(ctx context.Context, p *pacer, pid, slice int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.Slice")
	span.WithInt("process.pid", pid).WithInt("slice.length", slice)
	defer func() { tracing.EndSpan(span, err) }()
	return p.Run(ctx, slice, func(elapsed int) {
		snapshot, seq := e.tick(elapsed)
		e.emit(ctx, event.TypeTick, &pid, snapshot, seq)
	})
}

func (e *Engine) tick(elapsed int) (model.Snapshot, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slice != nil {
		e.slice.Elapsed = elapsed
	}
	return e.publishLocked()
}

// complete commits the slice of the running record, disposes of it and
// reports whether the run finished.
func (e *Engine) complete(ctx context.Context, slice int) bool {
	e.mu.Lock()
	current := e.running
	clock, disposition := Commit(current, slice, e.clock)
	e.clock = clock
	e.running = nil
	e.slice = nil
	delta := progress.Delta{Running: -1, Slices: 1, Clock: slice}
	eventType := event.TypeFinished
	if disposition == DispositionRequeue {
		e.ready = append(e.ready, current)
		delta.Ready = 1
		delta.Preemptions = 1
		eventType = event.TypePreempted
	} else {
		e.done = append(e.done, current)
		delta.Done = 1
	}
	finished := len(e.ready) == 0
	if finished {
		e.state = model.RunStateFinished
	}
	pid := current.PID
	snapshot, seq := e.publishLocked()
	var completedSeq uint64
	if finished {
		e.seq++
		completedSeq = e.seq
	}
	e.mu.Unlock()

	progress.UpdateCtx(ctx, delta)
	e.emit(ctx, eventType, &pid, snapshot, seq)
	if finished {
		e.logger.Info("run completed", slog.String("batch", snapshot.BatchID), slog.Int("clock", snapshot.Clock))
		e.emit(ctx, event.TypeCompleted, nil, snapshot, completedSeq)
	}
	return finished
}

// emit delivers snapshot to the listeners. Emits from the loop and from
// Toggle may interleave, so listeners order them by seq.
func (e *Engine) emit(ctx context.Context, eventType event.Type, pid *int, snapshot model.Snapshot, seq uint64) {
	e.listenersMu.RLock()
	listeners := e.listeners
	e.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	evt := event.NewEvent(&event.Context{
		BatchID:   snapshot.BatchID,
		EventType: eventType,
		PID:       pid,
		Clock:     snapshot.Clock,
		Seq:       seq,
	}, snapshot)
	for _, listener := range listeners {
		listener(ctx, evt)
	}
}
