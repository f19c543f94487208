package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a named background task. It returns how many items it handled.
type Job func(ctx context.Context) (int, error)

// Scheduler runs cleanup jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]registered
}

type registered struct {
	entry cron.EntryID
	run   func()
}

// NewScheduler creates a scheduler whose runs are bounded by timeout.
func NewScheduler(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		timeout: timeout,
		jobs:    make(map[string]registered),
	}
}

// Add registers job under name, replacing any job with the same name.
// schedule accepts the standard five fields and descriptors like "@every 5m".
func (s *Scheduler) Add(name, schedule string, job Job) error {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		n, err := job(ctx)
		if err != nil {
			log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		log.Debug().Str("job", name).Int("handled", n).Dur("took", time.Since(start)).Msg("scheduled job finished")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old.entry)
		delete(s.jobs, name)
	}
	id, err := s.cron.AddFunc(schedule, run)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.jobs[name] = registered{entry: id, run: run}
	log.Info().Str("job", name).Str("schedule", schedule).Msg("job scheduled")
	return nil
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if ok {
		j.run()
	}
	return ok
}

// Names returns the registered job names.
func (s *Scheduler) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
