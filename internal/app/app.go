package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"ColdMailer/internal/config"
	"ColdMailer/internal/domain"
	"ColdMailer/internal/infrastructure/brevo"
	"ColdMailer/internal/infrastructure/llm"
	"ColdMailer/internal/infrastructure/parser"
	"ColdMailer/internal/infrastructure/scheduler"
	"ColdMailer/internal/infrastructure/storage"
	"ColdMailer/internal/logging"
	"ColdMailer/internal/ports"
	"ColdMailer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *usecase.Scheduler
}

// New validates the configuration and builds every adapter once.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	model, err := NewModel(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	store, db, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	discovery := usecase.NewDiscovery(
		model,
		parser.NewRecordParser(cfg.Discovery.DebugPath, baseLogger.With("component", "parser")),
		usecase.DiscoveryOptions{
			Profile:        cfg.Profile,
			Topics:         cfg.Discovery.Topics,
			LeadCount:      cfg.Discovery.LeadCount,
			MaxAttempts:    cfg.Discovery.MaxAttempts,
			InitialBackoff: cfg.Discovery.InitialBackoff,
		},
		baseLogger.With("component", "discovery"),
	)

	persona := domain.Persona{
		Name:    cfg.Persona.Name,
		Title:   cfg.Persona.Title,
		Company: cfg.Persona.Company,
		Contact: cfg.Persona.Contact,
	}

	outreach := usecase.NewOutreach(usecase.OutreachDeps{
		Finder:  discovery,
		Guard:   usecase.NewDuplicateGuard(store, baseLogger.With("component", "guard")),
		Drafter: usecase.NewDrafter(model, persona),
		Dispatcher: usecase.NewDispatcher(
			brevo.NewClient(cfg.Mail),
			usecase.NewRecorder(store),
			baseLogger.With("component", "dispatcher"),
		),
		Logger: baseLogger.With("component", "outreach"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.Poll, cfg.Scheduler.RunOnStart)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		scheduler: usecase.NewScheduler(driver, outreach),
	}, nil
}

// Run blocks on the scheduler until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("outreach scheduler started",
		"interval", a.cfg.Scheduler.Interval,
		"run_on_start", a.cfg.Scheduler.RunOnStart,
		"store", a.cfg.Store.Driver,
		"model", a.cfg.Model.Model)

	err := a.scheduler.Run(ctx)
	a.logger.Info("outreach scheduler stopped")
	return err
}

// Close releases the database pool when one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// NewModel picks the model adapter for the configured provider.
func NewModel(ctx context.Context, cfg config.ModelConfig) (ports.Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return llm.NewGeminiModel(ctx, cfg)
	case config.ProviderOpenAI:
		return llm.NewChatModel(cfg), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// OpenStore connects the configured outreach store. The returned *sql.DB is
// nil for the REST driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (ports.OutreachStore, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSupabase:
		return storage.NewSupabaseRepository(cfg.URL, cfg.Key, cfg.Table), nil, nil
	case config.DriverPostgres:
		db, err := storage.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		repo := storage.NewPostgresRepository(db, cfg.Table)
		if cfg.AutoMigrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return repo, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
