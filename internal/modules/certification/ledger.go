package certification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/awareness-backend/internal/domain"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/events"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

var errUserNotFound = errors.New("user not found")

// History lists the caller's attempts, newest first.
func (u Usecases) History(ctx context.Context, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if u.deps.Attempts == nil {
		return nil, apierr.New(http.StatusInternalServerError, "attempt_repo_missing", fmt.Errorf("missing deps"))
	}
	rows, err := u.deps.Attempts.ListByUserDesc(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_attempts_failed", err)
	}
	if rows == nil {
		rows = []*types.QuizAttempt{}
	}
	return rows, nil
}

func (u Usecases) Stats(ctx context.Context) (types.QuizStats, error) {
	if u.deps.Attempts == nil {
		return types.QuizStats{}, apierr.New(http.StatusInternalServerError, "attempt_repo_missing", fmt.Errorf("missing deps"))
	}
	st, err := u.deps.Attempts.Stats(dbctx.Context{Ctx: ctx})
	if err != nil {
		return types.QuizStats{}, apierr.New(http.StatusInternalServerError, "load_stats_failed", err)
	}
	return st, nil
}

type UserAttemptsOutput struct {
	User     *types.User          `json:"user"`
	Attempts []*types.QuizAttempt `json:"attempts"`
}

// UserAttempts is the staff view of another user's ledger.
func (u Usecases) UserAttempts(ctx context.Context, targetID uuid.UUID) (UserAttemptsOutput, error) {
	if targetID == uuid.Nil {
		return UserAttemptsOutput{}, apierr.New(http.StatusBadRequest, "invalid_user_id", nil)
	}
	if u.deps.Users == nil || u.deps.Attempts == nil {
		return UserAttemptsOutput{}, apierr.New(http.StatusInternalServerError, "certification_deps_missing", fmt.Errorf("missing deps"))
	}

	var (
		user *types.User
		rows []*types.QuizAttempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = u.loadUser(gctx, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = u.deps.Attempts.ListByUserDesc(dbctx.Context{Ctx: gctx}, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, errUserNotFound) {
			return UserAttemptsOutput{}, apierr.New(http.StatusNotFound, "user_not_found", err)
		}
		return UserAttemptsOutput{}, apierr.New(http.StatusInternalServerError, "load_attempts_failed", err)
	}
	if rows == nil {
		rows = []*types.QuizAttempt{}
	}
	return UserAttemptsOutput{User: user, Attempts: rows}, nil
}

type CanTakeOutput struct {
	CanTakeQuiz       bool       `json:"canTakeQuiz"`
	CompletedModules  int64      `json:"completedModules"`
	TotalModules      int64      `json:"totalModules"`
	IsCertified       bool       `json:"isCertified"`
	CertificationDate *time.Time `json:"certificationDate"`
}

func (u Usecases) CanTake(ctx context.Context, userID uuid.UUID) (CanTakeOutput, error) {
	if userID == uuid.Nil {
		return CanTakeOutput{}, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if u.deps.Users == nil {
		return CanTakeOutput{}, apierr.New(http.StatusInternalServerError, "user_repo_missing", fmt.Errorf("missing deps"))
	}

	var out CanTakeOutput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := u.Eligibility(gctx, userID)
		if err != nil {
			return err
		}
		out.CompletedModules = c.Completed
		out.TotalModules = c.Total
		out.CanTakeQuiz = eligible(c)
		return nil
	})
	g.Go(func() error {
		user, err := u.loadUser(gctx, userID)
		if err != nil {
			return err
		}
		out.IsCertified = user.IsCertified
		out.CertificationDate = user.CertificationDate
		return nil
	})
	if err := g.Wait(); err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return CanTakeOutput{}, ae
		}
		if errors.Is(err, errUserNotFound) {
			return CanTakeOutput{}, apierr.New(http.StatusNotFound, "user_not_found", err)
		}
		return CanTakeOutput{}, apierr.New(http.StatusInternalServerError, "load_user_failed", err)
	}
	return out, nil
}

type ResetInput struct {
	ActorID  uuid.UUID
	TargetID uuid.UUID
	Reason   string
}

// ResetUser puts a user back into training without writing an attempt.
func (u Usecases) ResetUser(ctx context.Context, in ResetInput) (domainagg.ResetStandingResult, error) {
	if in.TargetID == uuid.Nil {
		return domainagg.ResetStandingResult{}, apierr.New(http.StatusBadRequest, "invalid_user_id", nil)
	}
	if u.deps.Certification == nil {
		return domainagg.ResetStandingResult{}, apierr.New(http.StatusInternalServerError, "certification_deps_missing", fmt.Errorf("missing deps"))
	}
	reason := in.Reason
	if reason == "" {
		reason = "admin_reset"
	}
	now := time.Now().UTC()
	res, err := u.deps.Certification.ResetStanding(ctx, domainagg.ResetStandingInput{
		UserID:  in.TargetID,
		Reason:  reason,
		ResetAt: now,
	})
	if err != nil {
		return domainagg.ResetStandingResult{}, mapAggregateError(err, "reset_failed")
	}
	u.deps.Metrics.IncCertificationReset()
	u.deps.Log.Info("user reset by staff", "actor_id", in.ActorID, "user_id", in.TargetID, "modules_reset", res.ModulesReset)
	u.deps.Events.Publish(ctx, events.CertificationReset(in.TargetID, 0, nil, reason, now))
	return res, nil
}

func (u Usecases) loadUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	rows, err := u.deps.Users.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, errUserNotFound
	}
	return rows[0], nil
}
