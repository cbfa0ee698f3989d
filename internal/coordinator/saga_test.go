package coordinator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog"
)

// fakeStep records calls into a shared journal.
type fakeStep struct {
	name    string
	execErr error
	compErr error
	journal *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(context.Context) error {
	*s.journal = append(*s.journal, "exec:"+s.name)
	return s.execErr
}

func (s *fakeStep) Compensate(context.Context) error {
	*s.journal = append(*s.journal, "comp:"+s.name)
	return s.compErr
}

func statuses(t *testing.T, repo sagalog.Repository, id string) []sagalog.Status {
	t.Helper()
	history, err := repo.History(context.Background(), id)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	out := make([]sagalog.Status, len(history))
	for i, e := range history {
		out[i] = e.Status
	}
	return out
}

func TestOrchestratorOutcomes(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		steps        func(j *[]string) []Step
		wantOutcome  Outcome
		wantJournal  []string
		wantStatuses []sagalog.Status
	}{
		{
			name: "all steps succeed",
			steps: func(j *[]string) []Step {
				return []Step{&fakeStep{name: "a", journal: j}, &fakeStep{name: "b", journal: j}}
			},
			wantOutcome:  OutcomeCompleted,
			wantJournal:  []string{"exec:a", "exec:b"},
			wantStatuses: []sagalog.Status{sagalog.StatusStarted, sagalog.StatusStepDone, sagalog.StatusStepDone, sagalog.StatusCompleted},
		},
		{
			name: "first step fails",
			steps: func(j *[]string) []Step {
				return []Step{&fakeStep{name: "a", execErr: boom, journal: j}, &fakeStep{name: "b", journal: j}}
			},
			wantOutcome:  OutcomeFailed,
			wantJournal:  []string{"exec:a"},
			wantStatuses: []sagalog.Status{sagalog.StatusStarted, sagalog.StatusFailed},
		},
		{
			name: "later step fails and is compensated",
			steps: func(j *[]string) []Step {
				return []Step{
					&fakeStep{name: "a", journal: j},
					&fakeStep{name: "b", journal: j},
					&fakeStep{name: "c", execErr: boom, journal: j},
				}
			},
			wantOutcome:  OutcomeCompensated,
			wantJournal:  []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"},
			wantStatuses: []sagalog.Status{sagalog.StatusStarted, sagalog.StatusStepDone, sagalog.StatusStepDone, sagalog.StatusCompensating, sagalog.StatusFailed},
		},
		{
			name: "compensation fails",
			steps: func(j *[]string) []Step {
				return []Step{
					&fakeStep{name: "a", compErr: errors.New("delete failed"), journal: j},
					&fakeStep{name: "b", execErr: boom, journal: j},
				}
			},
			wantOutcome:  OutcomeCompensationFailed,
			wantJournal:  []string{"exec:a", "exec:b", "comp:a"},
			wantStatuses: []sagalog.Status{sagalog.StatusStarted, sagalog.StatusStepDone, sagalog.StatusCompensating, sagalog.StatusFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var journal []string
			repo := sagalog.NewMemory()

			res := NewOrchestrator("saga-1", tt.steps(&journal), repo).Start(context.Background())

			if res.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", res.Outcome, tt.wantOutcome)
			}
			if !reflect.DeepEqual(journal, tt.wantJournal) {
				t.Errorf("journal = %v, want %v", journal, tt.wantJournal)
			}
			if got := statuses(t, repo, "saga-1"); !reflect.DeepEqual(got, tt.wantStatuses) {
				t.Errorf("log statuses = %v, want %v", got, tt.wantStatuses)
			}
			if tt.wantOutcome != OutcomeCompleted && !errors.Is(res.Err, boom) {
				t.Errorf("Err = %v, want boom", res.Err)
			}
			if (tt.wantOutcome == OutcomeCompensationFailed) != (res.CompensationErr != nil) {
				t.Errorf("CompensationErr = %v", res.CompensationErr)
			}
		})
	}
}

func TestOrchestratorWithoutLog(t *testing.T) {
	var journal []string
	res := NewOrchestrator("saga-2", []Step{&fakeStep{name: "a", journal: &journal}}, nil).Start(context.Background())
	if res.Outcome != OutcomeCompleted {
		t.Errorf("outcome = %q, want completed", res.Outcome)
	}
}

func TestOrchestratorRecordsPayload(t *testing.T) {
	var journal []string
	repo := sagalog.NewMemory()

	NewOrchestrator("saga-3", []Step{&fakeStep{name: "a", journal: &journal}}, repo).
		WithPayload(`{"total":12.5}`).
		Start(context.Background())

	history, _ := repo.History(context.Background(), "saga-3")
	if history[0].Payload != `{"total":12.5}` {
		t.Errorf("payload = %q", history[0].Payload)
	}
}

// cancellingStep cancels the request context and then fails, the way a
// client disconnect surfaces mid-saga.
type cancellingStep struct {
	cancel context.CancelFunc
}

func (s *cancellingStep) Name() string { return "cancel" }

func (s *cancellingStep) Execute(context.Context) error {
	s.cancel()
	return context.Canceled
}

func (s *cancellingStep) Compensate(context.Context) error { return nil }

// ctxStep fails its undo when the context is already done.
type ctxStep struct {
	fakeStep
}

func (s *ctxStep) Compensate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fakeStep.Compensate(ctx)
}

// ctxRepo refuses writes on a done context.
type ctxRepo struct {
	*sagalog.Memory
}

func (r ctxRepo) Save(ctx context.Context, e *sagalog.SagaLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Memory.Save(ctx, e)
}

func TestOrchestratorCompensatesAfterCancellation(t *testing.T) {
	var journal []string
	repo := ctxRepo{sagalog.NewMemory()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := []Step{
		&ctxStep{fakeStep{name: "a", journal: &journal}},
		&cancellingStep{cancel: cancel},
	}
	res := NewOrchestrator("saga-4", steps, repo).Start(ctx)

	if res.Outcome != OutcomeCompensated {
		t.Fatalf("outcome = %q, want compensated (comp err %v)", res.Outcome, res.CompensationErr)
	}
	if want := []string{"exec:a", "comp:a"}; !reflect.DeepEqual(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
	want := []sagalog.Status{sagalog.StatusStarted, sagalog.StatusStepDone, sagalog.StatusCompensating, sagalog.StatusFailed}
	if got := statuses(t, repo, "saga-4"); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
}
