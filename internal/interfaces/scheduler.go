package interfaces

import "time"

// ScheduledJobStatus reports one cron-registered job
type ScheduledJobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	IsRunning bool       `json:"is_running"`
	LastError string     `json:"last_error,omitempty"`
}

// SchedulerService manages cron-based recurring jobs
type SchedulerService interface {
	// RegisterJob binds a name and cron schedule to a handler
	RegisterJob(name, schedule string, handler func() error) error

	// Start begins executing registered jobs
	Start() error

	// Stop halts the cron runner, waiting for running jobs
	Stop()

	// IsRunning reports whether the scheduler is active
	IsRunning() bool

	// GetJobStatuses returns status for every registered job
	GetJobStatuses() []*ScheduledJobStatus
}
