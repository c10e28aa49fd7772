// Package schedule runs named jobs on cron expressions.
package schedule

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a registered scheduled task with run counters.
type Job struct {
	Name string
	Spec string

	mu       sync.Mutex
	runs     int
	failures int
}

// Runs returns how many times the job has executed.
func (j *Job) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

// Failures returns how many runs returned an error.
func (j *Job) Failures() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failures
}

// Schedule wraps a cron runner with named job registration.
type Schedule struct {
	cron *cron.Cron
	log  *logrus.Logger

	mu      sync.Mutex
	jobs    map[string]*Job
	entries map[string]cron.EntryID
	started bool
}

// New creates a Schedule. Jobs log through log; pass a discard logger to
// silence them.
func New(log *logrus.Logger) *Schedule {
	if log == nil {
		log = logrus.New()
	}
	return &Schedule{
		cron:    cron.New(),
		log:     log,
		jobs:    make(map[string]*Job),
		entries: make(map[string]cron.EntryID),
	}
}

// Call registers fn under name with a cron spec ("* * * * *" or
// "@every 30s"). Duplicate names are rejected.
func (s *Schedule) Call(name, spec string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("schedule: job %q already registered", name)
	}

	job := &Job{Name: name, Spec: spec}
	id, err := s.cron.AddFunc(spec, func() {
		job.mu.Lock()
		job.runs++
		job.mu.Unlock()

		if err := fn(); err != nil {
			job.mu.Lock()
			job.failures++
			job.mu.Unlock()
			s.log.WithFields(logrus.Fields{"job": name, "error": err}).Error("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule: job %q: %w", name, err)
	}

	s.jobs[name] = job
	s.entries[name] = id
	return nil
}

// Remove unregisters a job by name.
func (s *Schedule) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
		delete(s.jobs, name)
	}
}

// Job returns a registered job by name.
func (s *Schedule) Job(name string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	return j, ok
}

// Jobs returns the registered job names.
func (s *Schedule) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start launches the cron runner in its own goroutine. Safe to call more
// than once.
func (s *Schedule) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop halts the runner and waits for running jobs to finish.
func (s *Schedule) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
