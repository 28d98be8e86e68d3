// Package cron runs named housekeeping jobs on robfig/cron schedules.
//
// Specs use the standard five-field syntax or descriptors such as
// "@every 1m" and "@hourly".
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	robfigcron "github.com/robfig/cron/v3"
)

// JobFunc is the work done each time a job fires.
type JobFunc func(ctx context.Context) error

// Job describes a registered job and its last run.
type Job struct {
	ID         string
	Name       string
	Spec       string
	NextRunAt  time.Time
	LastRunAt  time.Time
	LastStatus string // "", "ok" or "error"
	LastError  string
	Runs       int
}

type entry struct {
	job      Job
	fn       JobFunc
	robfigID robfigcron.EntryID
}

// Service manages scheduled jobs.
type Service struct {
	robfig *robfigcron.Cron

	mu      sync.Mutex
	entries map[string]*entry // job ID → entry
	ctx     context.Context   // passed to jobs; set by Start
}

// NewService creates an idle Service.
func NewService() *Service {
	return &Service{
		robfig:  robfigcron.New(),
		entries: make(map[string]*entry),
		ctx:     context.Background(),
	}
}

// Start runs the scheduler. Blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	n := len(s.entries)
	s.mu.Unlock()

	s.robfig.Start()
	slog.Info("cron: started", "jobs", n)

	<-ctx.Done()

	<-s.robfig.Stop().Done()
	slog.Info("cron: stopped")
	return ctx.Err()
}

// AddJob schedules fn under name and returns the job ID.
func (s *Service) AddJob(name, spec string, fn JobFunc) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("cron: job %q has no function", name)
	}
	id := uuid.NewString()[:8]
	e := &entry{job: Job{ID: id, Name: name, Spec: spec}, fn: fn}

	rid, err := s.robfig.AddFunc(spec, func() { s.run(id) })
	if err != nil {
		return "", fmt.Errorf("cron: invalid spec %q for %q: %w", spec, name, err)
	}
	e.robfigID = rid

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()

	slog.Info("cron: added job", "name", name, "id", id, "spec", spec)
	return id, nil
}

// RemoveJob unschedules a job by ID and returns true if found.
func (s *Service) RemoveJob(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.robfig.Remove(e.robfigID)
	return true
}

// ListJobs returns all jobs ordered by name.
func (s *Service) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]Job, 0, len(s.entries))
	for _, e := range s.entries {
		j := e.job
		j.NextRunAt = s.robfig.Entry(e.robfigID).Next
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })
	return jobs
}

// RunNow executes a job immediately, outside its schedule.
func (s *Service) RunNow(id string) error {
	s.mu.Lock()
	_, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("cron: job %s not found", id)
	}
	s.run(id)
	return nil
}

func (s *Service) run(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	ctx := s.ctx
	s.mu.Unlock()
	if !ok {
		return
	}

	start := time.Now()
	err := e.fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.job.LastRunAt = start
	e.job.Runs++
	if err != nil {
		e.job.LastStatus = "error"
		e.job.LastError = err.Error()
		slog.Warn("cron: job failed", "name", e.job.Name, "err", err)
		return
	}
	e.job.LastStatus = "ok"
	e.job.LastError = ""
	slog.Debug("cron: job done", "name", e.job.Name, "took", time.Since(start))
}
