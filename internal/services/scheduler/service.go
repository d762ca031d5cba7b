package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
)

// jobEntry tracks one registered cron job
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	cronID    cron.EntryID
	lastRun   *time.Time
	lastError string
	isRunning bool
}

// Service runs registered jobs on cron schedules. Overlapping runs of
// the same job are skipped, not queued.
type Service struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]*jobEntry
	running bool
	logger  arbor.ILogger
}

// NewService creates a stopped scheduler
func NewService() *Service {
	return &Service{
		cron:   cron.New(),
		jobs:   make(map[string]*jobEntry),
		logger: common.GetLogger(),
	}
}

// RegisterJob binds a name and standard five-field cron schedule to a
// handler
func (s *Service) RegisterJob(name, schedule string, handler func() error) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if handler == nil {
		return fmt.Errorf("job handler is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}
	cronID, err := s.cron.AddFunc(schedule, func() { s.run(entry) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().Str("job", name).Str("schedule", schedule).Msg("Scheduled job registered")
	return nil
}

// run executes one job occurrence, skipping if the previous occurrence
// is still going
func (s *Service) run(entry *jobEntry) {
	s.mu.Lock()
	if entry.isRunning {
		s.mu.Unlock()
		s.logger.Warn().Str("job", entry.name).Msg("Previous run still in progress, skipping")
		return
	}
	entry.isRunning = true
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info().Str("job", entry.name).Msg("Scheduled job starting")
	err := entry.handler()

	s.mu.Lock()
	entry.isRunning = false
	entry.lastRun = &start
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Str("job", entry.name).Err(err).Msg("Scheduled job failed")
	} else {
		s.logger.Info().Str("job", entry.name).Dur("duration", time.Since(start)).Msg("Scheduled job completed")
	}
}

// Start begins executing registered jobs
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner and waits for running jobs
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning reports whether the scheduler is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// GetJobStatuses returns status for every registered job, sorted by name
func (s *Service) GetJobStatuses() []*interfaces.ScheduledJobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]*interfaces.ScheduledJobStatus, 0, len(s.jobs))
	for _, entry := range s.jobs {
		status := &interfaces.ScheduledJobStatus{
			Name:      entry.name,
			Schedule:  entry.schedule,
			LastRun:   entry.lastRun,
			IsRunning: entry.isRunning,
			LastError: entry.lastError,
		}
		if s.running {
			next := s.cron.Entry(entry.cronID).Next
			if !next.IsZero() {
				status.NextRun = &next
			}
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
