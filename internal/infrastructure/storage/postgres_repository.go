package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// "timestamp" is a type name in Postgres, keep it quoted.
const timestampColumn = `"timestamp"`

// PostgresRepository persists outreach records into Postgres.
type PostgresRepository struct {
	db        *sql.DB
	tableName string
	table     string
}

var _ ports.OutreachStore = (*PostgresRepository)(nil)

// Open connects with the lib/pq driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation over the given table.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	return &PostgresRepository{db: db, tableName: table, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema creates the outreach table when it is missing. Email is indexed
// but deliberately not unique: deduplication happens before sending.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	index := pq.QuoteIdentifier(r.tableName + "_email_idx")
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			company TEXT,
			email TEXT NOT NULL,
			%s TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, r.table, timestampColumn),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (email)`, index, r.table),
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Exists reports whether a record with exactly this email is stored.
func (r *PostgresRepository) Exists(ctx context.Context, email string) (bool, error) {
	query, args, err := psql.Select("email").
		From(r.table).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("query email: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("rows iteration: %w", err)
	}
	return found, nil
}

// Insert appends one outreach record.
func (r *PostgresRepository) Insert(ctx context.Context, record domain.OutreachRecord) error {
	query, args, err := psql.Insert(r.table).
		Columns("name", "company", "email", timestampColumn).
		Values(record.Name, record.Company, record.Email, record.SentAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outreach record: %w", err)
	}
	return nil
}

// List returns every record ordered by send time.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.OutreachRecord, error) {
	query, args, err := psql.Select("name", "company", "email", timestampColumn).
		From(r.table).
		OrderBy(timestampColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.OutreachRecord
	for rows.Next() {
		var (
			rec           domain.OutreachRecord
			name, company sql.NullString
		)
		if err := rows.Scan(&name, &company, &rec.Email, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Name = name.String
		rec.Company = company.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}
