package command

import (
	"context"
	"time"
)

// Snapshot is a read-only view of a command's current state.
type Snapshot struct {
	RunID           string            `json:"run_id"`
	OperationName   string            `json:"operation_name"`
	ThreadScope     string            `json:"thread_scope,omitempty"`
	Status          Status            `json:"status"`
	Priority        Priority          `json:"priority"`
	Metadata        map[string]string `json:"metadata"`
	AgentName       string            `json:"agent_name,omitempty"`
	ModelName       string            `json:"model_name,omitempty"`
	CurrentStep     int               `json:"current_step"`
	MaxStep         int               `json:"max_step"`
	StepDescription string            `json:"step_description,omitempty"`
	RetryCount      int               `json:"retry_count"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	EnqueuedAt      time.Time         `json:"enqueued_at"`
	StartedAt       *time.Time        `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
}

// Level is the severity of an Alert.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Alert is a human readable notification sent on terminal transitions.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// Notifier receives the live command list and terminal alerts.
//
// The dispatcher calls it synchronously after releasing its own locks, so
// implementations must return quickly and handle their own failures.
// notify.BestEffort adapts any error-returning sink to this contract.
type Notifier interface {
	BroadcastCommandList(ctx context.Context, snapshots []Snapshot)
	Notify(ctx context.Context, alert Alert)
}

type nopNotifier struct{}

func (nopNotifier) BroadcastCommandList(context.Context, []Snapshot) {}
func (nopNotifier) Notify(context.Context, Alert)                    {}
