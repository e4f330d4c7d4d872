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
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/email"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/scheduler"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/workflows"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/db"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker consumes due asynq tasks and republishes them on an
// in-process bus where the cadence and workflow services are subscribed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Handling a due step can schedule the next one, so the worker also
	// carries a scheduler client.
	stepClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer stepClient.Close()

	val := validator.New()
	activitySvc := activity.NewService(activity.NewRepository(pool), log)

	companiesModule := companies.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, val, log, activitySvc)

	cadencesModule := cadences.NewModule(pool, val, log, leadsModule.Service(), companiesModule.Service(), sender, stepClient, activitySvc)
	cadencesModule.SubscribeEvents(eventBus)

	workflowsModule, err := workflows.NewModule(pool, val, log, cfg, leadsModule.Service(), companiesModule.Service(), sender, stepClient)
	if err != nil {
		log.Error("failed to initialize workflows module", "error", err)
		panic("failed to initialize workflows module: " + err.Error())
	}
	workflowsModule.SubscribeEvents(eventBus)

	worker, err := scheduler.NewWorker(cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	log.Info("worker listening", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
	log.Info("worker stopped")
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
