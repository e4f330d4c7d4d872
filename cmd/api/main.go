package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/calls"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/email"
	apphttp "github.com/Dykstra-Hamel/DH-portal-sub004/internal/http"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/http/router"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/storage"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/db"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	stepScheduler, closeScheduler := initStepScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for quote attachments (MinIO)
	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		svc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure quote attachments bucket", 5, 2*time.Second, func() error {
			return svc.EnsureBucketExists(ctx, cfg.GetMinioBucketQuoteAttachments())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = svc
		log.Info("storage service initialized", "quoteAttachmentsBucket", cfg.GetMinioBucketQuoteAttachments())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; quote attachments disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	activitySvc := activity.NewService(activity.NewRepository(pool), log)

	companiesModule := companies.NewModule(pool, val)
	catalogModule := catalog.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, val, log, activitySvc)
	leadsModule.Service().SetEventBus(eventBus)
	callsModule := calls.NewModule(pool, val, log, activitySvc)

	quotesModule := quotes.NewModule(pool, val, log, catalogModule.Service(), companiesModule.Service(), activitySvc)
	quotesModule.Service().SetEventBus(eventBus)
	if storageSvc != nil {
		quotesModule.EnableAttachments(storageSvc, cfg.GetMinioBucketQuoteAttachments())
	}

	cadencesModule := cadences.NewModule(pool, val, log, leadsModule.Service(), companiesModule.Service(), sender, stepScheduler, activitySvc)
	cadencesModule.SubscribeEvents(eventBus)

	workflowsModule, err := workflows.NewModule(pool, val, log, cfg, leadsModule.Service(), companiesModule.Service(), sender, stepScheduler)
	if err != nil {
		log.Error("failed to initialize workflows module", "error", err)
		panic("failed to initialize workflows module: " + err.Error())
	}
	workflowsModule.SubscribeEvents(eventBus)

	// Quote lifecycle emails ride the event bus
	notifier := email.NewNotifier(sender, leadsModule.Service(), companiesModule.Service(), cfg.GetAppBaseURL(), log)
	notifier.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			companiesModule,
			catalogModule,
			leadsModule,
			callsModule,
			quotesModule,
			cadencesModule,
			workflowsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStepScheduler wires the asynq client when Redis is configured. A nil
// client is safe to schedule against; it drops the task.
func initStepScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.StepScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; cadence steps and workflow sends disabled")
		var nilClient *scheduler.Client
		return nilClient, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize step scheduler client", "error", err)
		var nilClient *scheduler.Client
		return nilClient, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
