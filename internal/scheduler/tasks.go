package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskCadenceStep fires when an enrolled lead's next cadence step is due.
const TaskCadenceStep = "cadences.step"

// TaskWorkflowSend fires when a delayed workflow email becomes due.
const TaskWorkflowSend = "workflows.send"

type CadenceStepPayload struct {
	EnrollmentID string `json:"enrollmentId"`
	CompanyID    string `json:"companyId"`
	StepOrder    int    `json:"stepOrder"`
}

type WorkflowSendPayload struct {
	SendID     string `json:"sendId"`
	WorkflowID string `json:"workflowId"`
	CompanyID  string `json:"companyId"`
	LeadID     string `json:"leadId"`
}

func NewCadenceStepTask(payload CadenceStepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCadenceStep, data), nil
}

func ParseCadenceStepPayload(task *asynq.Task) (CadenceStepPayload, error) {
	var payload CadenceStepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CadenceStepPayload{}, err
	}
	return payload, nil
}

func NewWorkflowSendTask(payload WorkflowSendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWorkflowSend, data), nil
}

func ParseWorkflowSendPayload(task *asynq.Task) (WorkflowSendPayload, error) {
	var payload WorkflowSendPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WorkflowSendPayload{}, err
	}
	return payload, nil
}
