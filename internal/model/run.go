package model

import "time"

// RunStatus is the lifecycle state of a discovery run.
type RunStatus string

const (
	RunRunning          RunStatus = "running"
	RunCompleted        RunStatus = "completed"
	RunFailed           RunStatus = "failed"
	RunSkippedNoProfile RunStatus = "skipped_no_profile"
	RunSkippedNoRoles   RunStatus = "skipped_no_roles"
)

// Terminal reports whether s is a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunSkippedNoProfile, RunSkippedNoRoles:
		return true
	}
	return false
}

// DiscoveryRun is the persisted record of one pipeline execution.
type DiscoveryRun struct {
	ID          string
	StartedAt   time.Time
	CompletedAt *time.Time
	JobsFound   int
	JobsNew     int
	Source      string // label of what triggered the run, e.g. "cli", "scheduler"
	Status      RunStatus
	Error       string
}

// RunResult is what the orchestrator returns to its caller.
type RunResult struct {
	RunID     string    `json:"run_id"`
	JobsFound int       `json:"jobs_found"`
	JobsNew   int       `json:"jobs_new"`
	Status    RunStatus `json:"status"`
}
