package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog"
)

// CompensationTimeout bounds the undo pass, which runs detached from the
// caller's cancellation.
const CompensationTimeout = 10 * time.Second

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Outcome tells callers how far a saga got and whether the undo worked.
type Outcome string

const (
	// OutcomeCompleted means every step executed.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed means the first step failed and nothing needed undoing.
	OutcomeFailed Outcome = "failed"
	// OutcomeCompensated means a later step failed and every earlier step
	// was undone.
	OutcomeCompensated Outcome = "compensated"
	// OutcomeCompensationFailed means at least one undo failed and the
	// system may hold partial state.
	OutcomeCompensationFailed Outcome = "compensation_failed"
)

// Result is returned by Start. Err is the failure of the step that stopped
// the saga; CompensationErr joins the failures of the undo pass.
type Result struct {
	Outcome         Outcome
	FailedStep      string
	Err             error
	CompensationErr error
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	sagaID  string
	payload string
	steps   []Step
	log     sagalog.Repository // nil-safe: transitions are not persisted if nil
}

// NewOrchestrator builds an orchestrator for one saga execution. sagaID is
// usually the business id (the order id) so the log joins with it.
func NewOrchestrator(sagaID string, steps []Step, log sagalog.Repository) *Orchestrator {
	return &Orchestrator{sagaID: sagaID, steps: steps, log: log}
}

// WithPayload records the JSON input that started the saga on the STARTED row.
func (o *Orchestrator) WithPayload(payload string) *Orchestrator {
	o.payload = payload
	return o
}

// Start runs the saga steps sequentially.
// If a step fails, it triggers the compensation of all previously successful steps.
func (o *Orchestrator) Start(ctx context.Context) Result {
	o.record(ctx, sagalog.StatusStarted, "", o.payload, nil)

	var successfulSteps []Step

	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "saga step failed, starting rollback", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			return o.rollback(ctx, step.Name(), err, successfulSteps)
		}
		// Track successful step for potential compensation (LIFO)
		successfulSteps = append(successfulSteps, step)
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, sagalog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "saga completed", "saga_id", o.sagaID)
	return Result{Outcome: OutcomeCompleted}
}

// rollback undoes steps in reverse order. A cancelled request must not stop
// the undo, so it keeps the trace values of ctx but drops its cancellation.
func (o *Orchestrator) rollback(ctx context.Context, failedStep string, cause error, steps []Step) Result {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CompensationTimeout)
	defer cancel()

	res := Result{FailedStep: failedStep, Err: cause}
	messages := []string{fmt.Sprintf("step %s failed: %v", failedStep, cause)}

	if len(steps) == 0 {
		res.Outcome = OutcomeFailed
		o.record(ctx, sagalog.StatusFailed, failedStep, "", messages)
		return res
	}

	o.record(ctx, sagalog.StatusCompensating, failedStep, "", messages)

	var compErrs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate saga step", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			compErrs = append(compErrs, fmt.Errorf("compensate %s: %w", step.Name(), err))
			messages = append(messages, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}

	res.Outcome = OutcomeCompensated
	if len(compErrs) > 0 {
		res.Outcome = OutcomeCompensationFailed
		res.CompensationErr = errors.Join(compErrs...)
	}
	o.record(ctx, sagalog.StatusFailed, failedStep, "", messages)
	return res
}

// record appends a transition to the saga log. Log failures never change the
// saga result.
func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.sagaID, status, step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist saga log", "saga_id", o.sagaID, "status", status, "error", err)
	}
}
