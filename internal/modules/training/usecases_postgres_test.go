package training

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	repotest "github.com/yungbote/awareness-backend/internal/data/repos/testutil"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

// A progress report that races a certification reset must see the reset, not restore
// the completion it read before the reset committed.
func TestRecordProgressCannotUndoConcurrentReset(t *testing.T) {
	db := repotest.PostgresDB(t)
	log := repotest.Logger(t)
	ctx := context.Background()

	users := repos.NewUserRepo(db, log)
	progress := repos.NewModuleProgressRepo(db, log)
	uc := New(UsecasesDeps{
		DB:       db,
		Log:      log,
		Users:    users,
		Modules:  repos.NewModuleRepo(db, log),
		Progress: progress,
	})
	user := repotest.SeedUser(t, ctx, db, "racer@example.com")
	mod := repotest.SeedModule(t, ctx, db, "phishing", 1, true)
	repotest.SeedProgress(t, ctx, db, user.ID, mod.ID, true)

	// Stand in for a failed submission: lock the user and clear progress, then hold the
	// transaction open while the report arrives.
	reset := db.Begin()
	if reset.Error != nil {
		t.Fatalf("begin: %v", reset.Error)
	}
	defer reset.Rollback()
	rdbc := dbctx.Context{Ctx: ctx, Tx: reset}
	if _, err := users.LockByID(rdbc, user.ID); err != nil {
		t.Fatalf("lock user: %v", err)
	}
	if n, err := progress.ResetAllForUser(rdbc, user.ID); err != nil || n != 1 {
		t.Fatalf("reset: n=%d err=%v", n, err)
	}

	type result struct {
		p   *types.ModuleProgress
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := uc.RecordProgress(ctx, RecordProgressInput{UserID: user.ID, ModuleID: mod.ID, WatchedSeconds: 30})
		done <- result{p, err}
	}()

	time.Sleep(300 * time.Millisecond)
	if err := reset.Commit().Error; err != nil {
		t.Fatalf("commit reset: %v", err)
	}

	var got result
	select {
	case got = <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("progress report never finished")
	}
	if got.err != nil {
		t.Fatalf("RecordProgress: %v", got.err)
	}
	if got.p.IsCompleted || got.p.CompletedAt != nil || got.p.WatchedSeconds != 30 {
		t.Fatalf("report restored pre-reset progress: %+v", got.p)
	}
	c, err := progress.CountCompletion(dbctx.Context{Ctx: ctx}, user.ID)
	if err != nil {
		t.Fatalf("CountCompletion: %v", err)
	}
	if c.Completed != 0 {
		t.Fatalf("completion survived the reset: %+v", c)
	}
}
