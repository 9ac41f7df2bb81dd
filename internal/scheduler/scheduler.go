package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"betbot/core/logger"
	"log/slog"
)

// Job is a named unit of scheduled work.
type Job func()

// Scheduler runs recurring and one-shot jobs in a single timezone.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

// New builds a scheduler for the given IANA timezone name.
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		loc:  loc,
	}, nil
}

// AddCron registers a job on a standard five-field cron spec.
func (s *Scheduler) AddCron(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return fmt.Errorf("scheduler: add job %q: %w", name, err)
	}
	logger.Sched.Info("job registered",
		slog.String("event", "sched.job_added"),
		slog.String("job", name),
		slog.String("spec", spec),
	)
	return nil
}

// ScheduleAt runs a job once at the given time. Times in the past fire
// immediately. The timer is cancelled when the scheduler stops.
func (s *Scheduler) ScheduleAt(name string, at time.Time, job Job) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	timer := time.AfterFunc(delay, s.wrap(name, job))
	s.timers = append(s.timers, timer)

	logger.Sched.Info("one-shot registered",
		slog.String("event", "sched.one_shot_added"),
		slog.String("job", name),
		slog.String("at", at.In(s.loc).Format(time.RFC3339)),
	)
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Sched.Info("scheduler started",
		slog.String("event", "sched.started"),
		slog.String("tz", s.loc.String()),
	)
}

// Stop halts the cron loop and cancels pending one-shot timers. Running
// jobs finish; Stop waits for them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = nil
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logger.Sched.Info("scheduler stopped",
		slog.String("event", "sched.stopped"),
	)
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Sched.Error("job panicked",
					slog.String("event", "sched.job_panic"),
					slog.String("job", name),
					slog.Any("err", r),
				)
			}
		}()
		job()
		logger.Sched.Debug("job finished",
			slog.String("event", "sched.job_done"),
			slog.String("job", name),
			slog.Int64("duration_ms", logger.DurationMS(time.Since(start))),
		)
	}
}
