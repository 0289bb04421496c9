package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/awareness-backend/internal/data/aggregates"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// InjectedTxRunner injects failures around an aggregate write.
// With DB set it runs the body in a real transaction and rolls it back on any
// injected failure, so tests can assert that nothing was committed.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailAfterBody  error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failAfterBody := r.FailAfterBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.incRollback()
		return failBeforeBody
	}

	run := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		if failAfterBody != nil {
			return failAfterBody
		}
		if failCommit != nil {
			return failCommit
		}
		return nil
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return run(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = run(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.incRollback()
		return err
	}
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
	return nil
}

func (r *InjectedTxRunner) incRollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}

// Counts returns begin, commit and rollback calls.
func (r *InjectedTxRunner) Counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.BeginCalls, r.CommitCalls, r.RollbackCalls
}
