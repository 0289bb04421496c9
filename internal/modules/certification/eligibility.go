package certification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

// Eligibility counts the caller's completed active modules against all active modules.
func (u Usecases) Eligibility(ctx context.Context, userID uuid.UUID) (repos.Completion, error) {
	if userID == uuid.Nil {
		return repos.Completion{}, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if u.deps.Progress == nil {
		return repos.Completion{}, apierr.New(http.StatusInternalServerError, "progress_repo_missing", fmt.Errorf("missing deps"))
	}
	c, err := u.deps.Progress.CountCompletion(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return repos.Completion{}, apierr.New(http.StatusInternalServerError, "load_completion_failed", err)
	}
	return c, nil
}

func eligible(c repos.Completion) bool {
	return c.Completed >= c.Total
}

func ineligibleError(c repos.Completion) error {
	return apierr.New(
		http.StatusForbidden,
		"modules_incomplete",
		fmt.Errorf("complete all training modules before taking the quiz (%d/%d)", c.Completed, c.Total),
	).WithDetails(map[string]any{
		"completed": c.Completed,
		"total":     c.Total,
	})
}

// RequireEligible fails with a 403 carrying both counts when modules remain.
func (u Usecases) RequireEligible(ctx context.Context, userID uuid.UUID, stage string) error {
	c, err := u.Eligibility(ctx, userID)
	if err != nil {
		return err
	}
	if !eligible(c) {
		u.deps.Metrics.IncEligibilityDenied(stage)
		return ineligibleError(c)
	}
	return nil
}
