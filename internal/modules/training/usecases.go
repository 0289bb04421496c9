package training

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Users    repos.UserRepo
	Modules  repos.ModuleRepo
	Progress repos.ModuleProgressRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "training")
	return Usecases{deps: deps}
}

type ModuleView struct {
	*types.TrainingModule
	Progress *types.ModuleProgress `json:"progress"`
}

type ModulesOutput struct {
	Modules          []ModuleView `json:"modules"`
	CompletedModules int          `json:"completedModules"`
	TotalModules     int          `json:"totalModules"`
}

// ListModules returns the active modules in display order, each joined with the caller's progress.
func (u Usecases) ListModules(ctx context.Context, userID uuid.UUID) (ModulesOutput, error) {
	if userID == uuid.Nil {
		return ModulesOutput{}, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if u.deps.Modules == nil || u.deps.Progress == nil {
		return ModulesOutput{}, apierr.New(http.StatusInternalServerError, "training_deps_missing", fmt.Errorf("missing deps"))
	}

	var (
		modules  []*types.TrainingModule
		progress []*types.ModuleProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		modules, err = u.deps.Modules.ListActive(dbctx.Context{Ctx: gctx})
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = u.deps.Progress.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ModulesOutput{}, apierr.New(http.StatusInternalServerError, "load_modules_failed", err)
	}

	byModule := make(map[uuid.UUID]*types.ModuleProgress, len(progress))
	for _, p := range progress {
		if p != nil {
			byModule[p.ModuleID] = p
		}
	}
	out := ModulesOutput{Modules: make([]ModuleView, 0, len(modules)), TotalModules: len(modules)}
	for _, m := range modules {
		p := byModule[m.ID]
		if p != nil && p.IsCompleted {
			out.CompletedModules++
		}
		out.Modules = append(out.Modules, ModuleView{TrainingModule: m, Progress: p})
	}
	return out, nil
}

type RecordProgressInput struct {
	UserID         uuid.UUID
	ModuleID       uuid.UUID
	WatchedSeconds int
	Completed      bool
}

// RecordProgress merges a progress report into the caller's row. Watched time only grows,
// and a completed module stays completed until a certification reset clears it.
// The caller's user row is locked first, the same lock certification writes take, so a
// report can never merge over a reset that committed while it was in flight.
func (u Usecases) RecordProgress(ctx context.Context, in RecordProgressInput) (*types.ModuleProgress, error) {
	if in.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if in.ModuleID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_module_id", nil)
	}
	if in.WatchedSeconds < 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_watched_seconds", fmt.Errorf("watched_seconds must not be negative"))
	}
	if u.deps.DB == nil || u.deps.Users == nil || u.deps.Modules == nil || u.deps.Progress == nil {
		return nil, apierr.New(http.StatusInternalServerError, "training_deps_missing", fmt.Errorf("missing deps"))
	}

	var out *types.ModuleProgress
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := u.deps.Users.LockByID(dbc, in.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.New(http.StatusNotFound, "user_not_found", err)
			}
			return err
		}
		mod, err := u.deps.Modules.GetActiveByID(dbc, in.ModuleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.New(http.StatusNotFound, "module_not_found", err)
			}
			return err
		}

		cur, err := u.deps.Progress.Get(dbc, in.UserID, mod.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		next := mergeProgress(cur, in, time.Now().UTC())
		next.UserID = in.UserID
		next.ModuleID = mod.ID
		if err := u.deps.Progress.Upsert(dbc, next); err != nil {
			return err
		}
		// Reload so the returned row carries the stored id.
		out, err = u.deps.Progress.Get(dbc, in.UserID, mod.ID)
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apierr.New(http.StatusInternalServerError, "record_progress_failed", err)
	}
	u.deps.Log.Debug("module progress recorded", "user_id", in.UserID, "module_id", in.ModuleID, "completed", out.IsCompleted)
	return out, nil
}

func mergeProgress(cur *types.ModuleProgress, in RecordProgressInput, now time.Time) *types.ModuleProgress {
	next := &types.ModuleProgress{WatchedSeconds: in.WatchedSeconds}
	if cur != nil {
		next.IsCompleted = cur.IsCompleted
		next.CompletedAt = cur.CompletedAt
		if cur.WatchedSeconds > next.WatchedSeconds {
			next.WatchedSeconds = cur.WatchedSeconds
		}
	}
	if in.Completed && !next.IsCompleted {
		next.IsCompleted = true
		next.CompletedAt = &now
	}
	next.UpdatedAt = now
	return next
}
