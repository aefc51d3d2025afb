package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"ColdMailer/internal/app"
	"ColdMailer/internal/config"
	"ColdMailer/internal/domain"
	"ColdMailer/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(ctx, cfg.Store, os.Stdout); err != nil {
		logger.Error("error loading logs", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.StoreConfig, w io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	store, db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	records, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	return printRecords(w, records)
}

func printRecords(w io.Writer, records []domain.OutreachRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No outreach logs available.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOMPANY\tEMAIL\tTIMESTAMP")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Name, rec.Company, rec.Email, rec.SentAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
