package app

import (
	"errors"
	"log/slog"
	"os"

	"github.com/immxrtalbeast/roomrent/internal/config"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/internal/service"
	"github.com/immxrtalbeast/roomrent/lib/logger/slogpretty"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// App holds the wired service graph shared by the server and the CLI.
type App struct {
	Store      *repository.Store
	Broker     *events.Broker
	Listing    *service.ListingService
	Visibility *service.VisibilityService
	Requests   *service.RequestService
	Contracts  *service.ContractService
	Invoices   *service.InvoiceService
	Scheduler  *service.Scheduler

	db *gorm.DB
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	store, db, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(cfg.Events.Buffer, log)
	visibility := service.NewVisibilityService(store.Rooms, store.Posts, broker, log, cfg.Visibility.Concurrency)
	invoices := service.NewInvoiceService(store.Contracts, store.Invoices, broker, log, service.BillingOptions{
		DueDay:         cfg.Billing.DueDay,
		InitialDueDays: cfg.Billing.InitialDueDays,
		GraceDays:      cfg.Billing.GraceDays,
		CallbackSecret: cfg.Payments.CallbackSecret,
	})
	contracts := service.NewContractService(store.Rooms, store.Contracts, visibility, broker, log)

	return &App{
		Store:      store,
		Broker:     broker,
		Listing:    service.NewListingService(store.Rooms, store.Posts, visibility, log),
		Visibility: visibility,
		Requests:   service.NewRequestService(store, invoices, visibility, broker, log),
		Contracts:  contracts,
		Invoices:   invoices,
		Scheduler:  service.NewScheduler(contracts, invoices, cfg.Billing.SweepInterval, log),
		db:         db,
	}, nil
}

// Migrate brings the schema up to date. It is a no-op on the in-memory store.
func (a *App) Migrate() error {
	if a.db == nil {
		return nil
	}
	return repository.Migrate(a.db)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openStore(cfg *config.Config, log *slog.Logger) (*repository.Store, *gorm.DB, error) {
	if cfg.Database.DSN == "" {
		if cfg.Env != envLocal {
			return nil, nil, errors.New("database dsn is empty")
		}
		log.Warn("database dsn is empty, using in-memory store")
		return repository.NewInMemoryStore(), nil, nil
	}

	db, err := ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresStore(db), db, nil
}

func ConnectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func SetupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
