package scheduler

import (
	"context"
	"fmt"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes due tasks and republishes them as synchronous bus events
// for the owning modules to handle.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskCadenceStep, w.handleCadenceStep)
	mux.HandleFunc(TaskWorkflowSend, w.handleWorkflowSend)

	return w, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleCadenceStep(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseCadenceStepPayload(task)
	if err != nil {
		return err
	}

	enrollmentID, err := uuid.Parse(payload.EnrollmentID)
	if err != nil {
		return err
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, CadenceStepDueEvent{
		BaseEvent:    events.NewBaseEvent(),
		EnrollmentID: enrollmentID,
		CompanyID:    companyID,
		StepOrder:    payload.StepOrder,
	})
}

func (w *Worker) handleWorkflowSend(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseWorkflowSendPayload(task)
	if err != nil {
		return err
	}

	sendID, err := uuid.Parse(payload.SendID)
	if err != nil {
		return err
	}
	workflowID, err := uuid.Parse(payload.WorkflowID)
	if err != nil {
		return err
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		return err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, WorkflowSendDueEvent{
		BaseEvent:  events.NewBaseEvent(),
		SendID:     sendID,
		WorkflowID: workflowID,
		CompanyID:  companyID,
		LeadID:     leadID,
	})
}
