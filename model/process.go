package model

import (
	"fmt"
	"unicode/utf8"
)

// PriorityPreemptible is the stored priority flag of a record that yields
// the processor after one quantum; any other flag runs to completion.
const (
	PriorityPreemptible    = 0
	PriorityNonPreemptible = 1
)

// Row represents a raw dataset tuple
type Row struct {
	PID      int    `json:"pid" yaml:"pid"`
	Name     string `json:"nombre" yaml:"nombre"`
	Owner    string `json:"usuario" yaml:"usuario"`
	Priority int    `json:"prioridad" yaml:"prioridad"`
}

// Process represents one schedulable unit
type Process struct {
	PID         int    `json:"pid"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Priority    int    `json:"priority"`
	Preemptible bool   `json:"preemptible"`
	// TotalService is fixed at load time from the quantum in effect then.
	TotalService     int          `json:"totalService"`
	RemainingService int          `json:"remainingService"`
	ServiceCount     int          `json:"serviceCount"`
	ArrivalOrder     int          `json:"arrivalOrder"`
	FinishTime       *int         `json:"finishTime,omitempty"`
	State            ProcessState `json:"state"`
}

// Clone returns a deep copy of the record
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	ret := *p
	if p.FinishTime != nil {
		finish := *p.FinishTime
		ret.FinishTime = &finish
	}
	return &ret
}

// IsDone returns true once the record has been finalized
func (p *Process) IsDone() bool {
	return p.FinishTime != nil
}

// String returns a short human-readable description
func (p *Process) String() string {
	return fmt.Sprintf("%d:%s(%d/%d)", p.PID, p.Name, p.RemainingService, p.TotalService)
}

// ServiceTime returns the total service a name requires under quantum.
// Length is measured in runes so that accented names are not inflated.
func ServiceTime(name string, quantum int) int {
	return quantum * utf8.RuneCountInString(name)
}

// NewProcess creates a ready record from a row
func NewProcess(row *Row, arrivalOrder, quantum int) *Process {
	total := ServiceTime(row.Name, quantum)
	return &Process{
		PID:              row.PID,
		Name:             row.Name,
		Owner:            row.Owner,
		Priority:         row.Priority,
		Preemptible:      row.Priority == PriorityPreemptible,
		TotalService:     total,
		RemainingService: total,
		ArrivalOrder:     arrivalOrder,
		State:            ProcessStateReady,
	}
}

// NewBatch builds a batch of ready records in row order. An empty row list
// yields an empty, valid batch.
func NewBatch(rows []*Row, quantum int) ([]*Process, error) {
	if quantum <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantum, quantum)
	}
	ret := make([]*Process, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		ret = append(ret, NewProcess(row, len(ret), quantum))
	}
	return ret, nil
}
