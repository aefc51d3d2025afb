package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"ColdMailer/internal/domain"
)

// LeadFinder proposes leads for one cycle.
type LeadFinder interface {
	FindLeads(ctx context.Context) ([]domain.Lead, error)
}

// DuplicateChecker tells whether an address was already contacted.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, email string) bool
}

// EmailDrafter writes the body for one lead.
type EmailDrafter interface {
	Draft(ctx context.Context, lead domain.Lead) (string, error)
}

// LeadDispatcher sends and records one email.
type LeadDispatcher interface {
	Dispatch(ctx context.Context, to, subject, body string, lead domain.Lead) (domain.SendReceipt, error)
}

var (
	_ LeadFinder       = (*Discovery)(nil)
	_ DuplicateChecker = (*DuplicateGuard)(nil)
	_ EmailDrafter     = (*Drafter)(nil)
	_ LeadDispatcher   = (*Dispatcher)(nil)
)

// OutreachDeps wires the cycle steps.
type OutreachDeps struct {
	Finder     LeadFinder
	Guard      DuplicateChecker
	Drafter    EmailDrafter
	Dispatcher LeadDispatcher
	Logger     *slog.Logger
}

// Outreach runs discover -> dedupe -> draft -> send -> record passes.
type Outreach struct {
	finder     LeadFinder
	guard      DuplicateChecker
	drafter    EmailDrafter
	dispatcher LeadDispatcher
	logger     *slog.Logger
}

// CycleReport summarizes one pass.
type CycleReport struct {
	Discovered int
	Sent       int
	Failed     int
	Skipped    int
	Err        error
}

// NewOutreach constructs the orchestration component.
func NewOutreach(deps OutreachDeps) *Outreach {
	return &Outreach{
		finder:     deps.Finder,
		guard:      deps.Guard,
		drafter:    deps.Drafter,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Subject is derived from the company, never generated.
func Subject(lead domain.Lead) string {
	return fmt.Sprintf("Helping %s", lead.Company)
}

// RunCycle performs one pass. It never panics or returns an error: any failure
// ends the pass early and is reported through the log and CycleReport.Err.
func (o *Outreach) RunCycle(ctx context.Context) (report CycleReport) {
	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("panic: %v", r)
		}
		if report.Err != nil {
			o.log(slog.LevelError, "outreach failed", "error", report.Err,
				"sent", report.Sent, "failed", report.Failed, "skipped", report.Skipped)
			return
		}
		o.log(slog.LevelInfo, "outreach cycle done", "discovered", report.Discovered,
			"sent", report.Sent, "failed", report.Failed, "skipped", report.Skipped)
	}()

	leads, err := o.finder.FindLeads(ctx)
	if err != nil {
		report.Err = fmt.Errorf("find leads: %w", err)
		return report
	}
	report.Discovered = len(leads)

	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return report
		}

		if o.guard.IsDuplicate(ctx, lead.Email) {
			report.Skipped++
			o.log(slog.LevelInfo, "skipping duplicate email", "email", lead.Email)
			continue
		}

		body, err := o.drafter.Draft(ctx, lead)
		if err != nil {
			report.Err = err
			return report
		}

		receipt, err := o.dispatcher.Dispatch(ctx, lead.Email, Subject(lead), body, lead)
		if err != nil {
			report.Err = err
			return report
		}

		if receipt.StatusCode == http.StatusCreated {
			report.Sent++
			o.log(slog.LevelInfo, "email sent successfully", "email", lead.Email)
			continue
		}
		report.Failed++
		o.log(slog.LevelWarn, "failed to send email", "email", lead.Email,
			"status", receipt.StatusCode, "response", receipt.Body)
	}

	return report
}

func (o *Outreach) log(level slog.Level, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Log(context.Background(), level, msg, args...)
	}
}
