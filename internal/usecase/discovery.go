package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// DiscoveryOptions tunes the lead generation prompt and its retry policy.
type DiscoveryOptions struct {
	Profile        string
	Topics         []string
	LeadCount      int
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Discovery asks the model for leads matching the service profile.
type Discovery struct {
	model  ports.Model
	parser ports.OutputParser
	opts   DiscoveryOptions
	logger *slog.Logger

	sleep     func(ctx context.Context, d time.Duration) error
	pickTopic func(n int) int
	requestID func() string
}

// NewDiscovery wires the model and the output parser.
func NewDiscovery(model ports.Model, parser ports.OutputParser, opts DiscoveryOptions, log *slog.Logger) *Discovery {
	if opts.LeadCount <= 0 {
		opts.LeadCount = 5
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 5 * time.Second
	}

	return &Discovery{
		model:     model,
		parser:    parser,
		opts:      opts,
		logger:    log,
		sleep:     sleepContext,
		pickTopic: rand.IntN,
		requestID: func() string { return uuid.NewString()[:8] },
	}
}

// FindLeads builds one prompt and retries it while the model reports overload,
// doubling the wait after each attempt. Other failures are returned at once.
func (d *Discovery) FindLeads(ctx context.Context) ([]domain.Lead, error) {
	if d.model == nil || d.parser == nil {
		return nil, fmt.Errorf("discovery is not configured")
	}
	if len(d.opts.Topics) == 0 {
		return nil, fmt.Errorf("no discovery topics configured")
	}

	topic := d.opts.Topics[d.pickTopic(len(d.opts.Topics))]
	prompt := d.buildPrompt(topic, d.requestID())
	d.log(slog.LevelDebug, "discover leads", "topic", topic)

	delay := d.opts.InitialBackoff
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		leads, err := d.attempt(ctx, prompt)
		if err == nil {
			return leads, nil
		}

		var transient *domain.TransientError
		if !errors.As(err, &transient) {
			d.log(slog.LevelError, "error finding leads", "error", err)
			return nil, err
		}

		d.log(slog.LevelWarn, "model overloaded, retrying",
			"delay", delay, "attempt", attempt, "max_attempts", d.opts.MaxAttempts)
		if err := d.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	return nil, fmt.Errorf("%w after %d attempts", domain.ErrModelOverloaded, d.opts.MaxAttempts)
}

func (d *Discovery) attempt(ctx context.Context, prompt string) ([]domain.Lead, error) {
	output, err := d.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate leads: %w", err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return nil, domain.ErrEmptyOutput
	}

	records, err := d.parser.Parse(output)
	if err != nil {
		return nil, fmt.Errorf("parse leads: %w", err)
	}

	leads := make([]domain.Lead, 0, len(records))
	for i, rec := range records {
		lead := leadFromRecord(rec)
		if lead.Email == "" {
			d.log(slog.LevelWarn, "dropping lead without email", "index", i, "company", lead.Company)
			continue
		}
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return nil, domain.ErrNoLeads
	}
	return leads, nil
}

func (d *Discovery) buildPrompt(topic, requestID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this profile:\n%s\n\n", strings.TrimSpace(d.opts.Profile))
	fmt.Fprintf(&b, "Find %d different companies or individuals from tech startups or digital agencies\n", d.opts.LeadCount)
	fmt.Fprintf(&b, "working in or around the topic of: %q. These companies should have a\n", topic)
	b.WriteString("business need that relates to our profile.\n\n")
	b.WriteString("For each lead, return:\n")
	b.WriteString("  - Name\n  - Role\n  - Company\n  - Industry\n  - Email\n  - Why they may need our services\n\n")
	b.WriteString("Only return a JSON list of dictionaries, no markdown, no explanation.\n")
	b.WriteString("Only include business emails (no Gmail/Yahoo/Hotmail).\n")
	b.WriteString("Ensure diversity and avoid repetition across leads.\n")
	fmt.Fprintf(&b, "Request ID: %s\n", requestID)
	return b.String()
}

func (d *Discovery) log(level slog.Level, msg string, args ...any) {
	if d.logger != nil {
		d.logger.Log(context.Background(), level, msg, args...)
	}
}

// leadFromRecord matches keys loosely: models vary casing and spacing.
func leadFromRecord(rec map[string]string) domain.Lead {
	normalized := make(map[string]string, len(rec))
	for k, v := range rec {
		normalized[normalizeKey(k)] = strings.TrimSpace(v)
	}

	first := func(keys ...string) string {
		for _, k := range keys {
			if v := normalized[k]; v != "" {
				return v
			}
		}
		return ""
	}

	return domain.Lead{
		Name:      first("name", "fullname", "contactname"),
		Role:      first("role", "title", "position"),
		Company:   first("company", "companyname", "organization"),
		Industry:  first("industry", "sector"),
		Email:     first("email", "emailaddress", "businessemail"),
		Rationale: first("whytheymayneedourservices", "whytheymayneedservices", "why", "reason", "rationale", "need"),
	}
}

func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
