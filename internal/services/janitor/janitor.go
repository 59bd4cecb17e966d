// Package janitor по cron-расписанию вычищает состояние, которое живёт
// только в памяти процесса: неиспользуемые лимитеры, забытые текущие
// страницы и свободные блокировки AI-чата.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"

	"github.com/Eka2r/Padayon/internal/lib/sl"
)

// retryDelay is the pause after a failed next-tick computation.
const retryDelay = 30 * time.Second

// Job is one sweep. It returns how many entries it evicted.
type Job struct {
	Name  string
	Sweep func() int
}

// Janitor runs its jobs on a cron schedule.
type Janitor struct {
	schedule string
	jobs     []Job
	log      *slog.Logger
}

// New validates the cron expression and creates a Janitor.
func New(schedule string, log *slog.Logger, jobs ...Job) (*Janitor, error) {
	const op = "janitor.New"
	if !gronx.New().IsValid(schedule) {
		return nil, fmt.Errorf("%s: invalid cron expression %q", op, schedule)
	}
	return &Janitor{
		schedule: schedule,
		jobs:     jobs,
		log:      log.With(slog.String("schedule", schedule)),
	}, nil
}

// RunOnce runs every job and returns the eviction count per job.
func (j *Janitor) RunOnce() map[string]int {
	evicted := make(map[string]int, len(j.jobs))
	for _, job := range j.jobs {
		n := job.Sweep()
		evicted[job.Name] = n
		if n > 0 {
			j.log.Info("sweep finished", slog.String("job", job.Name), slog.Int("evicted", n))
		}
	}
	return evicted
}

// Run sleeps until each next tick and sweeps, until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	j.log.Info("janitor started", slog.Int("jobs", len(j.jobs)))
	for {
		wait := retryDelay
		next, err := gronx.NextTickAfter(j.schedule, time.Now(), false)
		if err != nil {
			j.log.Error("failed to compute next tick", sl.Err(err))
		} else {
			wait = time.Until(next)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			j.log.Info("janitor stopped")
			return
		case <-timer.C:
			if err == nil {
				j.RunOnce()
			}
		}
	}
}
