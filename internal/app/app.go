// Package app wires the store, the optional event bus and the services
// from a validated configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// App holds everything a command needs. Close releases it.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Store  *storage.SQLiteRepository
	Events *amqp.Client // nil when AMQP is disabled or unreachable

	Ledger      *services.LedgerService
	Aggregation *services.AggregationEngine
	Debts       *services.DebtManager
	Portfolio   *services.PortfolioCalculator
	Users       *services.UserService
	Backups     *backup.Guardian
}

// Options tune construction; tests use them to pin the clock and keep
// bcrypt cheap.
type Options struct {
	Clock    func() time.Time
	HashCost int
}

// Open builds an App. The AMQP client is optional: a broker failure is
// logged and the app continues without events.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	appLog := logger.WithComponent(log.ComponentApp)

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: repo}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			appLog.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			appLog.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			a.Events = client
			publisher = client
		}
	}

	userOpts := []services.UserOption{
		services.WithDefaultCurrency(cfg.DefaultCurrency),
		services.WithUserClock(opts.Clock),
	}
	if opts.HashCost > 0 {
		userOpts = append(userOpts, services.WithHashCost(opts.HashCost))
	}

	a.Ledger = services.NewLedgerService(repo, publisher)
	a.Aggregation = services.NewAggregationEngine(repo)
	a.Debts = services.NewDebtManager(repo, publisher, opts.Clock)
	a.Portfolio = services.NewPortfolioCalculator(repo)
	a.Users = services.NewUserService(repo, cfg.MinPasswordLength, userOpts...)
	a.Backups = backup.NewGuardian(repo, cfg.BackupDir, cfg.BackupRetention,
		backup.WithClock(opts.Clock),
		backup.WithLogger(logger.WithComponent(log.ComponentBackup)))

	created, err := a.Users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure admin account: %w", err)
	}
	if created {
		appLog.InfoContext(ctx, "Created admin account", log.FieldUsername, cfg.AdminUsername)
	}

	appLog.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldPath, cfg.DBPath,
		"amqp_enabled", a.Events != nil)

	return a, nil
}

// Close shuts down the event client and the store, reporting every
// failure.
func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AMQP client: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close SQLite repository: %w", err))
		}
	}
	return errors.Join(errs...)
}
