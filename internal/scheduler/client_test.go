package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func TestClientSchedulesCadenceStep(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:       "redis://" + mr.Addr(),
		AsynqQueueName: "crm",
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := CadenceStepPayload{
		EnrollmentID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		CompanyID:    "11111111-2222-3333-4444-555555555555",
		StepOrder:    2,
	}
	runAt := time.Now().Add(time.Hour)
	if err := client.ScheduleCadenceStep(context.Background(), payload, runAt); err != nil {
		t.Fatalf("ScheduleCadenceStep: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("crm")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskCadenceStep {
		t.Fatalf("expected task type %q, got %q", TaskCadenceStep, tasks[0].Type)
	}

	parsed, err := ParseCadenceStepPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseCadenceStepPayload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload round trip mismatch: got %+v", parsed)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Fatalf("expected error for missing redis url")
	}
}
