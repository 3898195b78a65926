package rrsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"

	"github.com/viant/rrsim/internal/logging"
	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/progress"
	"github.com/viant/rrsim/service/catalog"
	"github.com/viant/rrsim/service/catalog/duckdb"
	cfs "github.com/viant/rrsim/service/catalog/fs"
	"github.com/viant/rrsim/service/dao"
	"github.com/viant/rrsim/service/event"
	"github.com/viant/rrsim/service/scheduler"
)

// Runtime drives one simulation: dataset selection, batch loading and the
// run controls exposed to a presentation layer.
type Runtime struct {
	engine     *scheduler.Engine
	events     *event.Service
	processDAO dao.Service[int, model.Process]
	fs         afs.Service
	logger     *slog.Logger
	onProgress func(progress.Progress)

	// syncMu orders registry updates and publishes by event Seq
	syncMu  sync.Mutex
	lastSeq uint64

	mu       sync.RWMutex
	source   catalog.Source
	location string
	kind     catalog.Kind
	tracker  *progress.Progress
}

// OpenDataset opens the dataset at location and clears all simulation
// state. YAML and JSON documents are read through afs; DuckDB and SQLite
// files through DuckDB.
func (r *Runtime) OpenDataset(ctx context.Context, location string) error {
	source, err := r.openSource(ctx, location)
	if err != nil {
		return err
	}
	r.mu.Lock()
	previous := r.source
	r.source = source
	r.location = location
	r.tracker = nil
	r.mu.Unlock()
	if previous != nil {
		if err := previous.Close(); err != nil {
			r.logger.Warn("failed to close dataset", logging.ErrAttr(err))
		}
	}
	r.logger.Info("dataset opened", slog.String("location", location))
	return r.engine.Load(ctx, nil)
}

func (r *Runtime) openSource(ctx context.Context, location string) (catalog.Source, error) {
	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml", ".json":
		return cfs.Open(ctx, r.fs, location)
	}
	return duckdb.Open(ctx, location)
}

// Location returns the location of the open dataset
func (r *Runtime) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

// Kind returns the selected dataset kind
func (r *Runtime) Kind() catalog.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kind
}

// SetKind selects the table catalogs are read from
func (r *Runtime) SetKind(kind catalog.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.kind = kind
	r.mu.Unlock()
	return nil
}

func (r *Runtime) dataset() (catalog.Source, catalog.Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.source == nil {
		return nil, "", catalog.ErrNotLoaded
	}
	return r.source, r.kind, nil
}

// Catalogs lists the catalogs of the selected kind
func (r *Runtime) Catalogs(ctx context.Context) ([]*catalog.Catalog, error) {
	source, kind, err := r.dataset()
	if err != nil {
		return nil, err
	}
	return source.Catalogs(ctx, kind)
}

// LoadCatalog loads the rows of catalogID as a new batch, discarding any
// in-flight run.
func (r *Runtime) LoadCatalog(ctx context.Context, catalogID int) error {
	source, kind, err := r.dataset()
	if err != nil {
		return err
	}
	rows, err := source.Rows(ctx, kind, catalogID)
	if err != nil {
		return err
	}
	return r.LoadBatch(ctx, rows)
}

// LoadBatch loads rows as a new batch, discarding any in-flight run
func (r *Runtime) LoadBatch(ctx context.Context, rows []*model.Row) error {
	if err := r.engine.Load(ctx, rows); err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}
	return nil
}

// Start begins a run of the loaded batch; it returns false when a run is
// already in flight or the batch is empty.
func (r *Runtime) Start(ctx context.Context) bool {
	snapshot := r.engine.Snapshot()
	runCtx, tracker := progress.WithNewTracker(ctx, snapshot.BatchID, r.onProgress)
	if !r.engine.Start(runCtx) {
		return false
	}
	r.mu.Lock()
	r.tracker = tracker
	r.mu.Unlock()
	return true
}

// Toggle pauses or resumes the run in flight
func (r *Runtime) Toggle() bool {
	return r.engine.Toggle()
}

// ToggleSimulation starts an idle or finished batch, otherwise pauses or
// resumes the run in flight.
func (r *Runtime) ToggleSimulation(ctx context.Context) bool {
	if r.engine.State().IsSimulating() {
		return r.engine.Toggle()
	}
	return r.Start(ctx)
}

// SetQuantum changes the quantum for subsequent slices and loads
func (r *Runtime) SetQuantum(quantum int) error {
	return r.engine.SetQuantum(quantum)
}

// Quantum returns the quantum in effect
func (r *Runtime) Quantum() int {
	return r.engine.Quantum()
}

// Snapshot returns a consistent copy of the simulation state
func (r *Runtime) Snapshot() model.Snapshot {
	return r.engine.Snapshot()
}

// Wait blocks until the run in flight exits
func (r *Runtime) Wait(ctx context.Context) error {
	return r.engine.Wait(ctx)
}

// Progress returns the counters of the last started run
func (r *Runtime) Progress() (progress.Progress, bool) {
	r.mu.RLock()
	tracker := r.tracker
	r.mu.RUnlock()
	if tracker == nil {
		return progress.Progress{}, false
	}
	return tracker.Snapshot(), true
}

// Process returns the record with pid from the current batch
func (r *Runtime) Process(ctx context.Context, pid int) (*model.Process, error) {
	return r.processDAO.Load(ctx, pid)
}

// Processes returns records of the current batch in arrival order, filtered
// by state when states are given.
func (r *Runtime) Processes(ctx context.Context, states ...model.ProcessState) ([]*model.Process, error) {
	var parameters []*dao.Parameter
	if len(states) > 0 {
		values := make([]string, 0, len(states))
		for _, state := range states {
			values = append(values, string(state))
		}
		parameters = append(parameters, dao.NewParameter(dao.ParameterState, values...))
	}
	return r.processDAO.List(ctx, parameters...)
}

// AddListener registers a synchronous scheduler listener
func (r *Runtime) AddListener(listener scheduler.Listener) {
	r.engine.AddListener(listener)
}

// Subscribe delivers every published snapshot to handler on its own
// goroutine. Snapshots are dropped while the subscription queue is full.
func (r *Runtime) Subscribe(handler event.Handler[model.Snapshot]) error {
	return event.SetListenerOf[model.Snapshot](r.events, handler)
}

// Unsubscribe stops the subscription, if any
func (r *Runtime) Unsubscribe() {
	event.RemoveListenerOf[model.Snapshot](r.events)
}

// Close stops the run in flight, subscriptions and releases the dataset
func (r *Runtime) Close() error {
	var errs []error
	if err := r.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	r.events.Close()
	r.mu.Lock()
	source := r.source
	r.source = nil
	r.mu.Unlock()
	if source != nil {
		if err := source.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// onEvent keeps the registry in sync and forwards snapshots to a subscriber.
// Toggle emits race the loop's, so a snapshot older than one already
// applied is dropped.
func (r *Runtime) onEvent(ctx context.Context, evt *event.Event[model.Snapshot]) {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()
	if evt.Context.Seq <= r.lastSeq {
		r.logger.Debug("stale snapshot", slog.String("type", string(evt.Type())), slog.Uint64("seq", evt.Context.Seq))
		return
	}
	r.lastSeq = evt.Context.Seq
	if evt.Type().IsTransition() {
		r.syncRegistry(ctx, evt.Data.Processes())
	}
	if !event.HasListenerOf[model.Snapshot](r.events) {
		return
	}
	publisher, err := event.PublisherOf[model.Snapshot](r.events)
	if err != nil {
		return
	}
	if err = publisher.Publish(ctx, evt); err != nil {
		r.logger.Debug("snapshot dropped", slog.String("type", string(evt.Type())), logging.ErrAttr(err))
	}
}

func (r *Runtime) syncRegistry(ctx context.Context, processes []*model.Process) {
	if reset, ok := r.processDAO.(interface {
		Reset(ctx context.Context, processes []*model.Process) error
	}); ok {
		if err := reset.Reset(ctx, processes); err != nil {
			r.logger.Warn("failed to sync registry", logging.ErrAttr(err))
		}
		return
	}
	for _, p := range processes {
		if err := r.processDAO.Save(ctx, p); err != nil {
			r.logger.Warn("failed to sync registry", slog.Int("pid", p.PID), logging.ErrAttr(err))
		}
	}
}
