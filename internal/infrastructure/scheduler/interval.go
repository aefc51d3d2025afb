package scheduler

import (
	"context"
	"time"

	"ColdMailer/internal/ports"
)

// IntervalScheduler runs a job every interval, checking on each poll tick
// whether the next run is due. A job that overruns does not trigger catch-up runs.
type IntervalScheduler struct {
	interval   time.Duration
	poll       time.Duration
	runOnStart bool
	now        func() time.Time
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; the first run happens one interval
// after start unless runOnStart is set.
func NewIntervalScheduler(interval, poll time.Duration, runOnStart bool) *IntervalScheduler {
	return &IntervalScheduler{
		interval:   interval,
		poll:       poll,
		runOnStart: runOnStart,
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled and returns ctx.Err().
func (s *IntervalScheduler) Run(ctx context.Context, job func(context.Context, time.Time)) error {
	if job == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	next := s.now().Add(s.interval)
	if s.runOnStart {
		next = s.now()
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}
			job(ctx, now)
			next = s.now().Add(s.interval)
		}
	}
}
