package ports

import (
	"context"
	"time"

	"ColdMailer/internal/domain"
)

// Model sends a prompt to a language model and returns its free-form answer.
// Adapters wrap temporary unavailability in *domain.TransientError.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OutputParser turns model text into a list of string-valued records.
type OutputParser interface {
	Parse(output string) ([]map[string]string, error)
}

// OutreachStore persists sent leads for deduplication and history.
type OutreachStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, record domain.OutreachRecord) error
	List(ctx context.Context) ([]domain.OutreachRecord, error)
}

// Mailer submits a rendered email to the transactional provider.
// A non-nil error means the request never got an answer; any provider
// status is reported through the receipt.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) (domain.SendReceipt, error)
}

// Scheduler controls when jobs execute; Run blocks until ctx is done.
type Scheduler interface {
	Run(ctx context.Context, job func(context.Context, time.Time)) error
}
