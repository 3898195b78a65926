package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/catalog"
	"github.com/viant/rrsim/service/event"
)

func finish(v int) *int {
	return &v
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		BatchID: "batch-1",
		State:   model.RunStateRunning,
		Quantum: 20,
		Clock:   60,
		Ready: []*model.Process{
			{PID: 1, Name: "abcd", Preemptible: true, TotalService: 80, RemainingService: 60},
		},
		Running: &model.Process{PID: 3, Name: "c", Preemptible: true, TotalService: 20, RemainingService: 20},
		Done: []*model.Process{
			{PID: 2, Name: "compilador_de_kernel", TotalService: 40, ServiceCount: 1, FinishTime: finish(60)},
		},
		Slice: &model.Slice{PID: 3, Length: 20, Elapsed: 5},
	}
}

func TestPanels(t *testing.T) {
	snapshot := testSnapshot()
	actual := Panels(&snapshot)
	for _, expect := range []string{"Ready", "Running", "Done", "clock", "1 abcd p 60/80", "3 c p 20/20 [5/20]", "compilador_d…", "t=60"} {
		assert.Contains(t, actual, expect)
	}
	assert.NotContains(t, actual, "compilador_de_kernel")

	empty := model.Snapshot{State: model.RunStateIdle, Quantum: 200}
	assert.Contains(t, Panels(&empty), "empty")
}

func TestCatalogs(t *testing.T) {
	catalogs := []*catalog.Catalog{{ID: 1, Name: "lote"}}
	testCases := []struct {
		name       string
		simulating bool
		expectBusy bool
	}{
		{name: "idle list", simulating: false},
		{name: "busy while simulating", simulating: true, expectBusy: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Catalogs(catalog.KindCPU, catalogs, tc.simulating)
			assert.Contains(t, actual, "1 lote")
			assert.Equal(t, tc.expectBusy, strings.Contains(actual, "(busy)"))
		})
	}
}

func TestChart(t *testing.T) {
	testCases := []struct {
		name    string
		entries []*model.TurnaroundEntry
		width   int
		expect  []string
	}{
		{
			name:   "no entries",
			expect: []string{"no finished processes"},
		},
		{
			name: "bars scale to the largest count",
			entries: []*model.TurnaroundEntry{
				{PID: 2, Label: "bb", Executions: 1},
				{PID: 1, Label: "abcd", Executions: 4},
			},
			width:  8,
			expect: []string{"bb   ██ 1", "abcd ████████ 4"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Chart(tc.entries, tc.width)
			for _, expect := range tc.expect {
				assert.Contains(t, actual, expect)
			}
		})
	}
}

func TestSliceBar(t *testing.T) {
	buffer := &bytes.Buffer{}
	bar := NewSliceBar(buffer)
	assert.Nil(t, bar.Current())

	require.NoError(t, bar.Update(&model.Slice{PID: 3, Length: 40, Elapsed: 20}))
	state := bar.Current()
	require.NotNil(t, state)
	assert.EqualValues(t, 20, state.CurrentNum)

	require.NoError(t, bar.Update(&model.Slice{PID: 4, Length: 10, Elapsed: 0}))
	assert.EqualValues(t, 0, bar.Current().CurrentNum)

	require.NoError(t, bar.Update(nil))
	assert.Nil(t, bar.Current())
	assert.Contains(t, buffer.String(), "pid 3")
}

func TestRenderer_Listen(t *testing.T) {
	buffer := &bytes.Buffer{}
	renderer := New(buffer)
	snapshot := testSnapshot()
	ctx := context.Background()

	renderer.Listen(ctx, event.NewEvent(&event.Context{EventType: event.TypeTick}, snapshot))
	assert.Contains(t, buffer.String(), "pid 3")

	snapshot.State = model.RunStateFinished
	snapshot.Running = nil
	snapshot.Slice = nil
	renderer.Listen(ctx, event.NewEvent(&event.Context{EventType: event.TypeCompleted}, snapshot))
	assert.Contains(t, buffer.String(), "Turnaround")
	assert.Equal(t, model.RunStateFinished, renderer.Last().State)
}
