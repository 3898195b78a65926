package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBatch(t *testing.T) {
	testCases := []struct {
		name      string
		rows      []*Row
		quantum   int
		expect    []*Process
		expectErr error
	}{
		{
			name:    "empty rows yield an empty batch",
			rows:    nil,
			quantum: 20,
			expect:  []*Process{},
		},
		{
			name: "service time derives from name length",
			rows: []*Row{
				{PID: 7, Name: "abc", Owner: "root", Priority: PriorityNonPreemptible},
				{PID: 3, Name: "x", Owner: "ana", Priority: PriorityPreemptible},
			},
			quantum: 20,
			expect: []*Process{
				{PID: 7, Name: "abc", Owner: "root", Priority: 1, Preemptible: false, TotalService: 60, RemainingService: 60, ArrivalOrder: 0, State: ProcessStateReady},
				{PID: 3, Name: "x", Owner: "ana", Priority: 0, Preemptible: true, TotalService: 20, RemainingService: 20, ArrivalOrder: 1, State: ProcessStateReady},
			},
		},
		{
			name:    "empty name has zero service",
			rows:    []*Row{{PID: 1, Name: ""}},
			quantum: 5,
			expect: []*Process{
				{PID: 1, Preemptible: true, State: ProcessStateReady},
			},
		},
		{
			name:    "runes not bytes",
			rows:    []*Row{{PID: 1, Name: "niño", Priority: 1}},
			quantum: 10,
			expect: []*Process{
				{PID: 1, Name: "niño", Priority: 1, TotalService: 40, RemainingService: 40, State: ProcessStateReady},
			},
		},
		{
			name:      "zero quantum rejected",
			rows:      []*Row{{PID: 1, Name: "a"}},
			quantum:   0,
			expectErr: ErrInvalidQuantum,
		},
		{
			name:      "negative quantum rejected",
			rows:      []*Row{{PID: 1, Name: "a"}},
			quantum:   -3,
			expectErr: ErrInvalidQuantum,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := NewBatch(tc.rows, tc.quantum)
			if tc.expectErr != nil {
				assert.True(t, errors.Is(err, tc.expectErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestNewBatch_Idempotent(t *testing.T) {
	rows := []*Row{{PID: 1, Name: "ab"}, {PID: 2, Name: "cde", Priority: 1}}
	first, err := NewBatch(rows, 20)
	assert.NoError(t, err)
	second, err := NewBatch(rows, 20)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcess_Clone(t *testing.T) {
	finish := 40
	original := &Process{PID: 1, Name: "a", FinishTime: &finish}
	clone := original.Clone()
	*clone.FinishTime = 99
	clone.Name = "b"
	assert.Equal(t, 40, *original.FinishTime)
	assert.Equal(t, "a", original.Name)
	assert.Nil(t, (*Process)(nil).Clone())
}

func TestSnapshot_Lookup(t *testing.T) {
	snapshot := &Snapshot{
		Ready:   []*Process{{PID: 1}, {PID: 2}},
		Running: &Process{PID: 3},
		Done:    []*Process{{PID: 4}},
	}
	assert.Equal(t, 4, snapshot.Len())
	assert.Equal(t, 3, snapshot.Lookup(3).PID)
	assert.Equal(t, 4, snapshot.Lookup(4).PID)
	assert.Nil(t, snapshot.Lookup(5))
	var pids []int
	for _, p := range snapshot.Processes() {
		pids = append(pids, p.PID)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, pids)
}

func TestTurnaround(t *testing.T) {
	twenty, sixty := 20, 60
	done := []*Process{
		{PID: 2, Name: "short", ServiceCount: 1, FinishTime: &twenty},
		{PID: 1, Name: "a-really-long-process-name", ServiceCount: 3, FinishTime: &sixty},
	}
	entries := Turnaround(done)
	assert.Len(t, entries, 2)
	assert.Equal(t, "short", entries[0].Label)
	assert.Equal(t, 1, entries[0].Executions)
	assert.Equal(t, "a-really-lon…", entries[1].Label)
	assert.Equal(t, 3, entries[1].Executions)
	assert.Equal(t, 60, entries[1].FinishTime)
}
