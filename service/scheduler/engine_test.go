package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/event"
)

// recorder collects events and checks that every record sits in exactly
// one container in each published snapshot.
type recorder struct {
	mu         sync.Mutex
	events     []*event.Event[model.Snapshot]
	violations []string
}

func (r *recorder) listen(_ context.Context, evt *event.Event[model.Snapshot]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	seen := map[int]bool{}
	for _, p := range evt.Data.Processes() {
		if seen[p.PID] {
			r.violations = append(r.violations, fmt.Sprintf("%v: pid %d held twice", evt.Type(), p.PID))
		}
		seen[p.PID] = true
	}
}

func (r *recorder) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ret []event.Type
	for _, evt := range r.events {
		ret = append(ret, evt.Type())
	}
	return ret
}

func (r *recorder) ofType(eventType event.Type) []*event.Event[model.Snapshot] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ret []*event.Event[model.Snapshot]
	for _, evt := range r.events {
		if evt.Type() == eventType {
			ret = append(ret, evt)
		}
	}
	return ret
}

func instantConfig(quantum int) Config {
	return Config{Quantum: quantum, TickUnits: 20, UnitDuration: 0}
}

func newTestEngine(t *testing.T, config Config, listeners ...Listener) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	options := []Option{WithConfig(config), WithListener(rec.listen)}
	for _, listener := range listeners {
		options = append(options, WithListener(listener))
	}
	engine, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine, rec
}

func runToCompletion(t *testing.T, engine *Engine) model.Snapshot {
	t.Helper()
	require.True(t, engine.Start(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, engine.Wait(ctx))
	return engine.Snapshot()
}

type outcome struct {
	PID          int
	Remaining    int
	ServiceCount int
	FinishTime   int
}

func outcomes(processes []*model.Process) []outcome {
	var ret []outcome
	for _, p := range processes {
		o := outcome{PID: p.PID, Remaining: p.RemainingService, ServiceCount: p.ServiceCount, FinishTime: -1}
		if p.FinishTime != nil {
			o.FinishTime = *p.FinishTime
		}
		ret = append(ret, o)
	}
	return ret
}

var mixedRows = []*model.Row{
	{PID: 1, Name: "abcd", Owner: "ana", Priority: model.PriorityPreemptible},
	{PID: 2, Name: "bb", Owner: "root", Priority: model.PriorityNonPreemptible},
	{PID: 3, Name: "c", Owner: "luis", Priority: model.PriorityPreemptible},
}

func TestEngine_Run(t *testing.T) {
	testCases := []struct {
		name        string
		quantum     int
		rows        []*model.Row
		expectDone  []outcome
		expectClock int
	}{
		{
			name:        "non-preemptible runs in a single slice",
			quantum:     20,
			rows:        []*model.Row{{PID: 1, Name: "abc", Priority: model.PriorityNonPreemptible}},
			expectDone:  []outcome{{PID: 1, ServiceCount: 1, FinishTime: 60}},
			expectClock: 60,
		},
		{
			name:        "preemptible runs one quantum per slice",
			quantum:     20,
			rows:        []*model.Row{{PID: 1, Name: "abc", Priority: model.PriorityPreemptible}},
			expectDone:  []outcome{{PID: 1, ServiceCount: 3, FinishTime: 60}},
			expectClock: 60,
		},
		{
			name:    "shorter preemptible completes first",
			quantum: 20,
			rows: []*model.Row{
				{PID: 1, Name: "a", Priority: model.PriorityPreemptible},
				{PID: 2, Name: "bb", Priority: model.PriorityPreemptible},
			},
			expectDone: []outcome{
				{PID: 1, ServiceCount: 1, FinishTime: 20},
				{PID: 2, ServiceCount: 2, FinishTime: 60},
			},
			expectClock: 60,
		},
		{
			name:    "mixed batch rotates preemptible records",
			quantum: 20,
			rows:    mixedRows,
			expectDone: []outcome{
				{PID: 2, ServiceCount: 1, FinishTime: 60},
				{PID: 3, ServiceCount: 1, FinishTime: 80},
				{PID: 1, ServiceCount: 4, FinishTime: 140},
			},
			expectClock: 140,
		},
		{
			name:        "zero-length name completes in one empty slice",
			quantum:     20,
			rows:        []*model.Row{{PID: 9, Name: "", Priority: model.PriorityPreemptible}},
			expectDone:  []outcome{{PID: 9, ServiceCount: 1, FinishTime: 0}},
			expectClock: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, rec := newTestEngine(t, instantConfig(tc.quantum))
			require.NoError(t, engine.Load(context.Background(), tc.rows))
			snapshot := runToCompletion(t, engine)

			assert.Equal(t, model.RunStateFinished, snapshot.State)
			assert.Empty(t, snapshot.Ready)
			assert.Nil(t, snapshot.Running)
			assert.Nil(t, snapshot.Slice)
			assert.Equal(t, tc.expectClock, snapshot.Clock)
			assert.Equal(t, tc.expectDone, outcomes(snapshot.Done))
			assert.Empty(t, rec.violations)

			// the clock equals the sum of committed slices
			sum := 0
			for _, dispatched := range rec.ofType(event.TypeDispatched) {
				sum += dispatched.Data.Slice.Length
			}
			assert.Equal(t, tc.expectClock, sum)

			remaining := map[int]int{}
			for _, evt := range rec.ofType(event.TypeDispatched) {
				running := evt.Data.Running
				if previous, ok := remaining[running.PID]; ok {
					assert.LessOrEqual(t, running.RemainingService, previous)
				}
				remaining[running.PID] = running.RemainingService
			}
			completed := rec.ofType(event.TypeCompleted)
			assert.Len(t, completed, 1)
		})
	}
}

func TestEngine_EventSequence(t *testing.T) {
	engine, rec := newTestEngine(t, instantConfig(20))
	require.NoError(t, engine.Load(context.Background(), []*model.Row{{PID: 1, Name: "abc", Priority: model.PriorityPreemptible}}))
	runToCompletion(t, engine)

	assert.Equal(t, []event.Type{
		event.TypeLoaded,
		event.TypeStarted,
		event.TypeDispatched, event.TypeTick, event.TypePreempted,
		event.TypeDispatched, event.TypeTick, event.TypePreempted,
		event.TypeDispatched, event.TypeTick, event.TypeFinished,
		event.TypeCompleted,
	}, rec.types())

	finished := rec.ofType(event.TypeFinished)
	require.Len(t, finished, 1)
	require.NotNil(t, finished[0].Context.PID)
	assert.Equal(t, 1, *finished[0].Context.PID)
	assert.Equal(t, 60, finished[0].Context.Clock)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := 1; i < len(rec.events); i++ {
		assert.Greater(t, rec.events[i].Context.Seq, rec.events[i-1].Context.Seq, "event %d", i)
	}
}

func TestEngine_NoOps(t *testing.T) {
	engine, _ := newTestEngine(t, instantConfig(20))
	ctx := context.Background()

	assert.False(t, engine.Start(ctx), "start without a batch")
	assert.False(t, engine.Toggle(), "toggle while idle")

	require.NoError(t, engine.Load(ctx, nil))
	assert.False(t, engine.Start(ctx), "start with an empty batch")
	assert.Equal(t, model.RunStateIdle, engine.State())

	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "a"}}))
	runToCompletion(t, engine)
	assert.False(t, engine.Start(ctx), "restart requires a new load")
	assert.False(t, engine.Toggle(), "toggle after completion")

	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "a"}}))
	snapshot := runToCompletion(t, engine)
	assert.Len(t, snapshot.Done, 1)
}

func TestEngine_DoubleStart(t *testing.T) {
	config := Config{Quantum: 200, TickUnits: 1, UnitDuration: time.Millisecond}
	engine, _ := newTestEngine(t, config)
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "abcdefghij", Priority: model.PriorityNonPreemptible}}))

	assert.True(t, engine.Start(ctx))
	assert.False(t, engine.Start(ctx))
	assert.True(t, engine.State().IsSimulating())
}

func TestEngine_Load(t *testing.T) {
	engine, _ := newTestEngine(t, instantConfig(20))
	ctx := context.Background()

	require.NoError(t, engine.Load(ctx, mixedRows))
	first := engine.Snapshot()
	require.NoError(t, engine.Load(ctx, mixedRows))
	second := engine.Snapshot()

	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.Equal(t, first.Ready, second.Ready)
	assert.Equal(t, model.RunStateIdle, second.State)
	assert.Equal(t, 0, second.Clock)
	assert.Equal(t, []int{80, 40, 20}, []int{second.Ready[0].TotalService, second.Ready[1].TotalService, second.Ready[2].TotalService})
}

func TestEngine_LoadDiscardsRun(t *testing.T) {
	dispatched := make(chan struct{}, 1)
	config := Config{Quantum: 200, TickUnits: 1, UnitDuration: time.Millisecond}
	engine, rec := newTestEngine(t, config, func(_ context.Context, evt *event.Event[model.Snapshot]) {
		if evt.Type() == event.TypeDispatched {
			select {
			case dispatched <- struct{}{}:
			default:
			}
		}
	})
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "abcdefghij", Priority: model.PriorityNonPreemptible}}))
	oldBatch := engine.Snapshot().BatchID
	require.True(t, engine.Start(ctx))
	<-dispatched

	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 5, Name: "x", Priority: model.PriorityPreemptible}}))
	snapshot := engine.Snapshot()
	assert.Equal(t, model.RunStateIdle, snapshot.State)
	assert.Equal(t, 0, snapshot.Clock)
	assert.Nil(t, snapshot.Running)
	assert.Empty(t, snapshot.Done)
	require.Len(t, snapshot.Ready, 1)
	assert.Equal(t, 5, snapshot.Ready[0].PID)
	assert.NoError(t, engine.Wait(ctx))

	discarded := rec.ofType(event.TypeDiscarded)
	require.Len(t, discarded, 1)
	assert.Equal(t, oldBatch, discarded[0].Context.BatchID)
	assert.Empty(t, rec.ofType(event.TypeFinished))
}

func TestEngine_Close(t *testing.T) {
	dispatched := make(chan struct{}, 1)
	config := Config{Quantum: 200, TickUnits: 1, UnitDuration: time.Millisecond}
	engine, _ := newTestEngine(t, config, func(_ context.Context, evt *event.Event[model.Snapshot]) {
		if evt.Type() == event.TypeDispatched {
			select {
			case dispatched <- struct{}{}:
			default:
			}
		}
	})
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, []*model.Row{
		{PID: 1, Name: "abcdefghij", Priority: model.PriorityNonPreemptible},
		{PID: 2, Name: "b", Priority: model.PriorityPreemptible},
	}))
	require.True(t, engine.Start(ctx))
	<-dispatched

	require.NoError(t, engine.Close())
	snapshot := engine.Snapshot()
	assert.Equal(t, model.RunStateIdle, snapshot.State)
	require.Len(t, snapshot.Ready, 2)
	assert.Equal(t, 1, snapshot.Ready[0].PID)
	assert.Equal(t, 2000, snapshot.Ready[0].RemainingService)
	assert.Equal(t, 0, snapshot.Ready[0].ServiceCount)
	assert.Equal(t, model.ProcessStateReady, snapshot.Ready[0].State)
	assert.Nil(t, snapshot.Slice)
}

func TestEngine_CloseRequiresLoad(t *testing.T) {
	dispatched := make(chan int, 4)
	config := Config{Quantum: 200, TickUnits: 1, UnitDuration: time.Millisecond}
	engine, rec := newTestEngine(t, config, func(_ context.Context, evt *event.Event[model.Snapshot]) {
		if evt.Type() == event.TypeDispatched {
			dispatched <- *evt.Context.PID
		}
	})
	ctx := context.Background()
	rows := []*model.Row{
		{PID: 1, Name: "", Priority: model.PriorityPreemptible},
		{PID: 2, Name: "abcdefghij", Priority: model.PriorityNonPreemptible},
	}
	require.NoError(t, engine.Load(ctx, rows))
	require.True(t, engine.Start(ctx))
	for pid := range dispatched {
		if pid == 2 {
			break
		}
	}

	require.NoError(t, engine.Close())
	snapshot := engine.Snapshot()
	assert.Equal(t, model.RunStateIdle, snapshot.State)
	require.Len(t, snapshot.Done, 1)
	require.Len(t, snapshot.Ready, 1)
	assert.Equal(t, 2, snapshot.Ready[0].PID)

	assert.False(t, engine.Start(ctx), "partly served batch")
	snapshot = engine.Snapshot()
	assert.Equal(t, 2, snapshot.Len())
	assert.Len(t, snapshot.Done, 1)
	assert.Len(t, snapshot.Ready, 1)

	require.NoError(t, engine.Load(ctx, rows))
	assert.True(t, engine.Start(ctx))
	require.NoError(t, engine.Close())
	assert.Empty(t, rec.violations)
}

func TestEngine_PauseBetweenSlices(t *testing.T) {
	ctx := context.Background()
	reference, _ := newTestEngine(t, instantConfig(20))
	require.NoError(t, reference.Load(ctx, mixedRows))
	expect := runToCompletion(t, reference)

	paused := make(chan struct{})
	var once sync.Once
	var engine *Engine
	engine, rec := newTestEngine(t, instantConfig(20), func(_ context.Context, evt *event.Event[model.Snapshot]) {
		if evt.Type() == event.TypePreempted {
			once.Do(func() {
				engine.Toggle()
				close(paused)
			})
		}
	})
	require.NoError(t, engine.Load(ctx, mixedRows))
	require.True(t, engine.Start(ctx))
	<-paused

	time.Sleep(20 * time.Millisecond)
	snapshot := engine.Snapshot()
	assert.Equal(t, model.RunStatePaused, snapshot.State)
	assert.True(t, snapshot.IsSimulating())
	assert.Equal(t, 20, snapshot.Clock)
	assert.Nil(t, snapshot.Running)
	assert.Len(t, snapshot.Ready, 3)

	assert.True(t, engine.Toggle())
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, engine.Wait(waitCtx))

	actual := engine.Snapshot()
	assert.Equal(t, outcomes(expect.Done), outcomes(actual.Done))
	assert.Equal(t, expect.Clock, actual.Clock)
	assert.Len(t, rec.ofType(event.TypePaused), 1)
	assert.Len(t, rec.ofType(event.TypeResumed), 1)
}

func TestEngine_PauseMidSlice(t *testing.T) {
	ctx := context.Background()
	paused := make(chan struct{})
	var once sync.Once
	var engine *Engine
	config := Config{Quantum: 20, TickUnits: 20, UnitDuration: time.Millisecond}
	engine, _ = newTestEngine(t, config, func(_ context.Context, evt *event.Event[model.Snapshot]) {
		if evt.Type() == event.TypeTick {
			once.Do(func() {
				engine.Toggle()
				close(paused)
			})
		}
	})
	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 4, Name: "abcdef", Priority: model.PriorityNonPreemptible}}))
	require.True(t, engine.Start(ctx))
	<-paused

	time.Sleep(30 * time.Millisecond)
	snapshot := engine.Snapshot()
	assert.Equal(t, model.RunStatePaused, snapshot.State)
	require.NotNil(t, snapshot.Running)
	assert.Equal(t, 4, snapshot.Running.PID)
	require.NotNil(t, snapshot.Slice)
	assert.Equal(t, 20, snapshot.Slice.Elapsed)
	assert.Equal(t, 120, snapshot.Slice.Length)
	assert.Equal(t, 0, snapshot.Clock)

	assert.True(t, engine.Toggle())
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, engine.Wait(waitCtx))

	actual := engine.Snapshot()
	assert.Equal(t, []outcome{{PID: 4, ServiceCount: 1, FinishTime: 120}}, outcomes(actual.Done))
}

func TestEngine_SetQuantum(t *testing.T) {
	engine, _ := newTestEngine(t, instantConfig(20))
	ctx := context.Background()

	assert.ErrorIs(t, engine.SetQuantum(0), model.ErrInvalidQuantum)
	assert.Equal(t, 20, engine.Quantum())

	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "abcd", Priority: model.PriorityPreemptible}}))
	require.NoError(t, engine.SetQuantum(40))
	snapshot := engine.Snapshot()
	assert.Equal(t, 80, snapshot.Ready[0].TotalService)
	assert.Equal(t, 40, snapshot.Quantum)

	snapshot = runToCompletion(t, engine)
	assert.Equal(t, []outcome{{PID: 1, ServiceCount: 2, FinishTime: 80}}, outcomes(snapshot.Done))

	require.NoError(t, engine.Load(ctx, []*model.Row{{PID: 1, Name: "abcd", Priority: model.PriorityPreemptible}}))
	assert.Equal(t, 160, engine.Snapshot().Ready[0].TotalService)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithQuantum(0))
	assert.ErrorIs(t, err, model.ErrInvalidQuantum)
}
