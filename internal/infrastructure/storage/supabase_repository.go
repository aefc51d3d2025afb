package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// SupabaseRepository talks to the table through the project's PostgREST API.
type SupabaseRepository struct {
	client *postgrest.Client
	table  string
}

var _ ports.OutreachStore = (*SupabaseRepository)(nil)

// NewSupabaseRepository uses the project URL and a service or anon key.
func NewSupabaseRepository(projectURL, key, table string) *SupabaseRepository {
	restURL := strings.TrimSuffix(projectURL, "/") + "/rest/v1"
	client := postgrest.NewClient(restURL, "public", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	return &SupabaseRepository{client: client, table: table}
}

type supabaseRow struct {
	Name      *string `json:"name"`
	Company   *string `json:"company"`
	Email     string  `json:"email"`
	Timestamp string  `json:"timestamp"`
}

// Exists reports whether a row with exactly this email is stored.
func (r *SupabaseRepository) Exists(ctx context.Context, email string) (bool, error) {
	if err := r.ready(ctx); err != nil {
		return false, err
	}

	var rows []supabaseRow
	_, err := r.client.From(r.table).
		Select("email", "", false).
		Eq("email", email).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("select email: %w", err)
	}
	return len(rows) > 0, nil
}

// Insert appends one row.
func (r *SupabaseRepository) Insert(ctx context.Context, record domain.OutreachRecord) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	row := supabaseRow{
		Name:      nullable(record.Name),
		Company:   nullable(record.Company),
		Email:     record.Email,
		Timestamp: record.SentAt.Format(time.RFC3339Nano),
	}
	if _, _, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

// List returns every row ordered by timestamp.
func (r *SupabaseRepository) List(ctx context.Context) ([]domain.OutreachRecord, error) {
	if err := r.ready(ctx); err != nil {
		return nil, err
	}

	var rows []supabaseRow
	_, err := r.client.From(r.table).
		Select("name,company,email,timestamp", "", false).
		Order("timestamp", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}

	records := make([]domain.OutreachRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.OutreachRecord{Email: row.Email, SentAt: parseTimestamp(row.Timestamp)}
		if row.Name != nil {
			rec.Name = *row.Name
		}
		if row.Company != nil {
			rec.Company = *row.Company
		}
		records = append(records, rec)
	}
	return records, nil
}

// ready fails fast on a cancelled context; the PostgREST builder does not take one.
func (r *SupabaseRepository) ready(ctx context.Context) error {
	if r.client.ClientError != nil {
		return fmt.Errorf("supabase client: %w", r.client.ClientError)
	}
	return ctx.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
}

func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
