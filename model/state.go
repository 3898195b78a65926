package model

// RunState represents the current state of the scheduler
type RunState string

const (
	RunStateIdle     RunState = "idle"
	RunStateRunning  RunState = "running"
	RunStatePaused   RunState = "paused"
	RunStateFinished RunState = "finished"
)

// IsSimulating returns true while the loop is active (running or paused)
func (s RunState) IsSimulating() bool {
	return s == RunStateRunning || s == RunStatePaused
}

// IsPaused returns true when the loop is active but suspended
func (s RunState) IsPaused() bool {
	return s == RunStatePaused
}

// ProcessState mirrors the container holding a record
type ProcessState string

const (
	ProcessStateReady   ProcessState = "ready"
	ProcessStateRunning ProcessState = "running"
	ProcessStateDone    ProcessState = "done"
)
