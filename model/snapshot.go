package model

// Slice describes the run slice in flight
type Slice struct {
	PID     int `json:"pid"`
	Length  int `json:"length"`
	Elapsed int `json:"elapsed"`
}

// Snapshot represents a consistent, read-only copy of the simulation state
type Snapshot struct {
	BatchID string     `json:"batchId"`
	State   RunState   `json:"state"`
	Quantum int        `json:"quantum"`
	Clock   int        `json:"clock"`
	Ready   []*Process `json:"ready"`
	Running *Process   `json:"running,omitempty"`
	Done    []*Process `json:"done"`
	Slice   *Slice     `json:"slice,omitempty"`
}

// IsSimulating returns true while the loop is active
func (s *Snapshot) IsSimulating() bool {
	return s.State.IsSimulating()
}

// IsPaused returns true while the loop is suspended
func (s *Snapshot) IsPaused() bool {
	return s.State.IsPaused()
}

// Len returns the number of records held across all containers
func (s *Snapshot) Len() int {
	ret := len(s.Ready) + len(s.Done)
	if s.Running != nil {
		ret++
	}
	return ret
}

// Lookup returns the record with the given pid, or nil
func (s *Snapshot) Lookup(pid int) *Process {
	if s.Running != nil && s.Running.PID == pid {
		return s.Running
	}
	for _, candidate := range s.Ready {
		if candidate.PID == pid {
			return candidate
		}
	}
	for _, candidate := range s.Done {
		if candidate.PID == pid {
			return candidate
		}
	}
	return nil
}

// Processes returns all records, ready first, then running, then done
func (s *Snapshot) Processes() []*Process {
	ret := make([]*Process, 0, s.Len())
	ret = append(ret, s.Ready...)
	if s.Running != nil {
		ret = append(ret, s.Running)
	}
	return append(ret, s.Done...)
}

// CloneAll deep copies a record list
func CloneAll(processes []*Process) []*Process {
	ret := make([]*Process, len(processes))
	for i, p := range processes {
		ret[i] = p.Clone()
	}
	return ret
}
