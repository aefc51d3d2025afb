package usecase

import (
	"context"
	"errors"
	"time"

	"ColdMailer/internal/ports"
)

// Scheduler wires the interval driver with the outreach use case.
type Scheduler struct {
	driver   ports.Scheduler
	outreach *Outreach
}

// NewScheduler returns a helper running outreach cycles on the driver's schedule.
func NewScheduler(driver ports.Scheduler, outreach *Outreach) *Scheduler {
	return &Scheduler{driver: driver, outreach: outreach}
}

// Run blocks until ctx is cancelled; cancellation is a clean stop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.driver == nil || s.outreach == nil {
		return nil
	}

	job := func(ctx context.Context, _ time.Time) {
		_ = s.outreach.RunCycle(ctx)
	}

	err := s.driver.Run(ctx, job)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
