package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

func TestInjectedTxRunnerCommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if b, c, rb := r.Counts(); b != 1 || c != 1 || rb != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", b, c, rb)
	}
}

func TestInjectedTxRunnerInjectionPoints(t *testing.T) {
	injected := errors.New("injected")
	cases := []struct {
		name       string
		runner     *InjectedTxRunner
		wantCalled bool
		wantRB     int
	}{
		{"begin", &InjectedTxRunner{FailBegin: injected}, false, 0},
		{"before body", &InjectedTxRunner{FailBeforeBody: injected}, false, 1},
		{"after body", &InjectedTxRunner{FailAfterBody: injected}, true, 1},
		{"commit", &InjectedTxRunner{FailCommit: injected}, true, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			err := tc.runner.InTx(context.Background(), func(_ dbctx.Context) error {
				called = true
				return nil
			})
			if !errors.Is(err, injected) {
				t.Fatalf("expected injected err, got %v", err)
			}
			if called != tc.wantCalled {
				t.Fatalf("body called: want=%v got=%v", tc.wantCalled, called)
			}
			if _, c, rb := tc.runner.Counts(); c != 0 || rb != tc.wantRB {
				t.Fatalf("counters commit=%d rollback=%d", c, rb)
			}
		})
	}
}

func TestHooksRecorderCapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("agg.op", "success", 10*time.Millisecond)
	h.ObserveOperation("agg.other", "conflict", time.Millisecond)
	h.ObserveOperation("agg.op", "retryable", time.Millisecond)
	h.IncConflict("agg.other")
	h.IncRetry("agg.op")

	got := h.StatusesFor("agg.op")
	if len(got) != 2 || got[0] != "success" || got[1] != "retryable" {
		t.Fatalf("StatusesFor: %v", got)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "agg.other" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "agg.op" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}
