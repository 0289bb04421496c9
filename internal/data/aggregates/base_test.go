package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

func TestExecuteWriteReportsStatusPerOutcome(t *testing.T) {
	cases := []struct {
		name          string
		body          error
		wantStatus    string
		wantConflicts int
		wantRetries   int
	}{
		{"success", nil, "success", 0, 0},
		{"conflict", errors.Join(ErrConflict, errors.New("attempt number taken")), string(domainagg.CodeConflict), 1, 0},
		{"retryable", errors.Join(ErrRetryable, errors.New("lock timeout")), string(domainagg.CodeRetryable), 0, 1},
		{"invariant", errors.Join(ErrInvariant, errors.New("mixed standing")), string(domainagg.CodeInvariantViolation), 0, 0},
		{"internal", errors.New("disk on fire"), string(domainagg.CodeInternal), 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			op := "aggregate.test." + tc.name
			err := executeWrite(context.Background(), BaseDeps{
				Runner: spyTxRunner{},
				Hooks:  hooks,
			}, op, func(_ dbctx.Context) error { return tc.body })

			if tc.body == nil && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tc.body != nil && err == nil {
				t.Fatalf("expected error")
			}
			if len(hooks.Operations) != 1 {
				t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
			}
			if hooks.Operations[0].Name != op || hooks.Operations[0].Status != tc.wantStatus {
				t.Fatalf("operation: want=%s/%s got=%+v", op, tc.wantStatus, hooks.Operations[0])
			}
			if len(hooks.Conflicts) != tc.wantConflicts || len(hooks.Retries) != tc.wantRetries {
				t.Fatalf("conflicts=%v retries=%v", hooks.Conflicts, hooks.Retries)
			}
		})
	}
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &spyHooks{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "  ", func(_ dbctx.Context) error { return nil })
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "aggregate.write" {
		t.Fatalf("unexpected operations: %+v", hooks.Operations)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
