package usecase

import (
	"context"
	"fmt"
	"time"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// Recorder appends a sent lead to the outreach store.
type Recorder struct {
	store ports.OutreachStore
	now   func() time.Time
}

// NewRecorder wires the outreach store with the wall clock.
func NewRecorder(store ports.OutreachStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// Record inserts name, company, email and the current time. No existence check.
func (r *Recorder) Record(ctx context.Context, lead domain.Lead) error {
	if r.store == nil {
		return fmt.Errorf("recorder is not configured")
	}

	record := domain.OutreachRecord{
		Name:    lead.Name,
		Company: lead.Company,
		Email:   lead.Email,
		SentAt:  r.now(),
	}
	if err := r.store.Insert(ctx, record); err != nil {
		return fmt.Errorf("record outreach for %s: %w", lead.Email, err)
	}
	return nil
}
