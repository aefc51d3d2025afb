package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColdMailer/internal/domain"
)

type stubFinder struct {
	leads []domain.Lead
	err   error
	calls int
}

func (f *stubFinder) FindLeads(context.Context) ([]domain.Lead, error) {
	f.calls++
	return f.leads, f.err
}

type panicFinder struct{}

func (panicFinder) FindLeads(context.Context) ([]domain.Lead, error) {
	panic("nil map")
}

type outreachFixture struct {
	finder   LeadFinder
	model    *sequenceModel
	store    *memStore
	mailer   *fakeMailer
	outreach *Outreach
}

func newOutreachFixture(finder LeadFinder, model *sequenceModel, mailer *fakeMailer) *outreachFixture {
	store := &memStore{}
	outreach := NewOutreach(OutreachDeps{
		Finder:     finder,
		Guard:      NewDuplicateGuard(store, nil),
		Drafter:    NewDrafter(model, domain.Persona{Name: "Habib"}),
		Dispatcher: NewDispatcher(mailer, NewRecorder(store), nil),
	})
	return &outreachFixture{finder: finder, model: model, store: store, mailer: mailer, outreach: outreach}
}

func TestRunCycleSingleLead(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{
		{Name: "A", Role: "CTO", Company: "Acme", Email: "a@acme.io", Rationale: "Slow checkout"},
	}}
	model := &sequenceModel{replies: []modelReply{{out: "Hi A,\n\nWorth a quick chat?"}}}
	fx := newOutreachFixture(finder, model, &fakeMailer{status: http.StatusCreated})

	report := fx.outreach.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, CycleReport{Discovered: 1, Sent: 1}, report)

	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, "a@acme.io", fx.mailer.sent[0].To)
	assert.Equal(t, "Helping Acme", fx.mailer.sent[0].Subject)

	require.Len(t, fx.store.records, 1)
	rec := fx.store.records[0]
	assert.Equal(t, "A", rec.Name)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "a@acme.io", rec.Email)
	assert.False(t, rec.SentAt.IsZero())
}

func TestRunCycleSkipsDuplicatesAcrossRuns(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{
		{Name: "A", Company: "Acme", Email: "a@acme.io"},
		{Name: "B", Company: "Beta", Email: "b@beta.dev"},
	}}
	model := &sequenceModel{replies: []modelReply{{out: "Hello."}}}
	fx := newOutreachFixture(finder, model, &fakeMailer{})

	first := fx.outreach.RunCycle(context.Background())
	second := fx.outreach.RunCycle(context.Background())

	assert.Equal(t, CycleReport{Discovered: 2, Sent: 2}, first)
	assert.Equal(t, CycleReport{Discovered: 2, Skipped: 2}, second)
	assert.Len(t, fx.mailer.sent, 2)
	assert.Len(t, fx.store.records, 2)
	assert.Equal(t, 2, model.calls())
}

func TestRunCycleDiscoveryFailure(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{err: domain.ErrModelOverloaded}
	fx := newOutreachFixture(finder, &sequenceModel{}, &fakeMailer{})

	report := fx.outreach.RunCycle(context.Background())

	require.ErrorIs(t, report.Err, domain.ErrModelOverloaded)
	assert.Empty(t, fx.mailer.sent)
	assert.Zero(t, report.Discovered)
}

func TestRunCycleDraftFailureAbortsRemainingLeads(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{
		{Name: "A", Company: "Acme", Email: "a@acme.io"},
		{Name: "B", Company: "Beta", Email: "b@beta.dev"},
	}}
	model := &sequenceModel{replies: []modelReply{{err: errors.New("quota exceeded")}}}
	fx := newOutreachFixture(finder, model, &fakeMailer{})

	report := fx.outreach.RunCycle(context.Background())

	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "quota exceeded")
	assert.Equal(t, 1, model.calls())
	assert.Empty(t, fx.mailer.sent)
	assert.Empty(t, fx.store.records)
}

func TestRunCycleSendFailureContinues(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{
		{Name: "A", Company: "Acme", Email: "a@acme.io"},
		{Name: "B", Company: "Beta", Email: "b@beta.dev"},
	}}
	model := &sequenceModel{replies: []modelReply{{out: "Hello."}}}
	fx := newOutreachFixture(finder, model, &fakeMailer{status: http.StatusBadRequest, body: "invalid sender"})

	report := fx.outreach.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, CycleReport{Discovered: 2, Failed: 2}, report)
	// failed sends are still logged to the store
	assert.Len(t, fx.store.records, 2)
}

func TestRunCycleFailOpenGuardSendsAgain(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{{Name: "A", Company: "Acme", Email: "a@acme.io"}}}
	fx := newOutreachFixture(finder, &sequenceModel{replies: []modelReply{{out: "Hello."}}}, &fakeMailer{})
	fx.store.records = []domain.OutreachRecord{{Email: "a@acme.io"}}
	fx.store.existsErr = errors.New("timeout")

	report := fx.outreach.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Sent)
}

func TestRunCycleRecoversPanic(t *testing.T) {
	t.Parallel()

	fx := newOutreachFixture(panicFinder{}, &sequenceModel{}, &fakeMailer{})

	var report CycleReport
	require.NotPanics(t, func() { report = fx.outreach.RunCycle(context.Background()) })
	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "nil map")
}

func TestRunCycleStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{leads: []domain.Lead{{Name: "A", Company: "Acme", Email: "a@acme.io"}}}
	fx := newOutreachFixture(finder, &sequenceModel{replies: []modelReply{{out: "Hello."}}}, &fakeMailer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := fx.outreach.RunCycle(ctx)
	require.ErrorIs(t, report.Err, context.Canceled)
	assert.Empty(t, fx.mailer.sent)
}
