package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/infrastructure/parser"
)

const leadsJSON = `[
  {"Name": "A", "Role": "CTO", "Company": "Acme", "Industry": "Fintech", "Email": "a@acme.io", "Why they may need our services": "Slow checkout"},
  {"Name": "B", "Role": "Founder", "Company": "Beta", "Industry": "eCommerce", "Email": "b@beta.dev", "Why they may need our services": "No automation"}
]`

func overloaded() modelReply {
	return modelReply{err: &domain.TransientError{Err: errors.New("Error 503, Message: The model is overloaded.")}}
}

func newTestDiscovery(model *sequenceModel, delays *[]time.Duration) *Discovery {
	d := NewDiscovery(model, parser.NewRecordParser("", nil), DiscoveryOptions{
		Profile: "We build AI agents.",
		Topics:  []string{"Voice AI", "Fintech"},
	}, nil)
	d.sleep = func(_ context.Context, delay time.Duration) error {
		*delays = append(*delays, delay)
		return nil
	}
	d.pickTopic = func(int) int { return 1 }
	d.requestID = func() string { return "req12345" }
	return d
}

func TestFindLeadsRetriesOverload(t *testing.T) {
	t.Parallel()

	model := &sequenceModel{replies: []modelReply{
		overloaded(), overloaded(), overloaded(), overloaded(),
		{out: leadsJSON},
	}}
	var delays []time.Duration
	d := newTestDiscovery(model, &delays)

	leads, err := d.FindLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, 5, model.calls())
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second}, delays)

	// every attempt reuses the same prompt
	for _, p := range model.prompts {
		assert.Equal(t, model.prompts[0], p)
	}
}

func TestFindLeadsNonTransientFailsFast(t *testing.T) {
	t.Parallel()

	model := &sequenceModel{replies: []modelReply{{err: errors.New("API key not valid")}}}
	var delays []time.Duration
	d := newTestDiscovery(model, &delays)

	_, err := d.FindLeads(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Equal(t, 1, model.calls())
	assert.Empty(t, delays)
}

func TestFindLeadsExhausted(t *testing.T) {
	t.Parallel()

	model := &sequenceModel{replies: []modelReply{overloaded()}}
	var delays []time.Duration
	d := newTestDiscovery(model, &delays)

	_, err := d.FindLeads(context.Background())
	require.ErrorIs(t, err, domain.ErrModelOverloaded)
	assert.Equal(t, 5, model.calls())
	assert.Equal(t, []time.Duration{
		5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second, 80 * time.Second,
	}, delays)
}

func TestFindLeadsValidationErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		check func(t *testing.T, err error)
	}{
		{
			name:  "empty",
			reply: "   \n",
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrEmptyOutput) },
		},
		{
			name:  "not a list",
			reply: `{"Name": "A"}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, parser.ErrNotList) },
		},
		{
			name:  "unparseable",
			reply: "no leads today",
			check: func(t *testing.T, err error) {
				var pe *parser.ParseError
				assert.True(t, errors.As(err, &pe))
			},
		},
		{
			name:  "no email anywhere",
			reply: `[{"Name": "A", "Company": "Acme"}]`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrNoLeads) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &sequenceModel{replies: []modelReply{{out: tt.reply}}}
			var delays []time.Duration
			d := newTestDiscovery(model, &delays)

			_, err := d.FindLeads(context.Background())
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 1, model.calls())
			assert.Empty(t, delays)
		})
	}
}

func TestFindLeadsPrompt(t *testing.T) {
	t.Parallel()

	model := &sequenceModel{replies: []modelReply{{out: leadsJSON}}}
	var delays []time.Duration
	d := newTestDiscovery(model, &delays)

	_, err := d.FindLeads(context.Background())
	require.NoError(t, err)

	prompt := model.prompts[0]
	assert.Contains(t, prompt, "We build AI agents.")
	assert.Contains(t, prompt, `"Fintech"`)
	assert.Contains(t, prompt, "Find 5 different companies")
	assert.Contains(t, prompt, "Request ID: req12345")
	assert.Contains(t, prompt, "no Gmail/Yahoo/Hotmail")
}

func TestFindLeadsStopsOnCancelledBackoff(t *testing.T) {
	t.Parallel()

	model := &sequenceModel{replies: []modelReply{overloaded()}}
	d := NewDiscovery(model, parser.NewRecordParser("", nil), DiscoveryOptions{Topics: []string{"AI tools"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.FindLeads(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, model.calls())
}

func TestLeadFromRecord(t *testing.T) {
	t.Parallel()

	lead := leadFromRecord(map[string]string{
		"name":                           " Jane Roe ",
		"ROLE":                           "Lead Engineer",
		"company_name":                   "Gamma",
		"Industry":                       "SaaS",
		"E-mail":                         "jane@gamma.io",
		"Why they may need our services": "Legacy API",
	})

	assert.Equal(t, domain.Lead{
		Name:      "Jane Roe",
		Role:      "Lead Engineer",
		Company:   "Gamma",
		Industry:  "SaaS",
		Email:     "jane@gamma.io",
		Rationale: "Legacy API",
	}, lead)
	assert.True(t, strings.HasPrefix(normalizeKey("Why they may need our services"), "whythey"))
}
