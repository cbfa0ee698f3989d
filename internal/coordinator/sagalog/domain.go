// Package sagalog records every transition of an order-admission saga.
//
// The log is append-only. It answers two questions an operator has after a
// failed checkout: how far did the header/items write get, and did the
// compensating delete succeed. Each row carries the trace id of the request
// that wrote it so a row leads straight to the trace.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// SagaLog is a single row in the saga_logs table.
type SagaLog struct {
	// SagaID is the order id the saga admitted.
	SagaID string `json:"saga_id"`

	Status Status `json:"status"`

	// CurrentStep is the step that just executed or failed.
	CurrentStep string `json:"current_step,omitempty"`

	// Payload is the JSON order input, written on STARTED only.
	Payload string `json:"payload,omitempty"`

	// ErrorMessages is a JSON array of step and compensation failures.
	ErrorMessages string `json:"error_messages"`

	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
