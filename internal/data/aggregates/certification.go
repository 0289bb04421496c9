package aggregates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/data/repos"
	types "github.com/yungbote/awareness-backend/internal/domain"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

type CertificationAggregateDeps struct {
	Base BaseDeps

	Users    repos.UserRepo
	Progress repos.ModuleProgressRepo
	Attempts repos.QuizAttemptRepo
}

type certificationAggregate struct {
	deps CertificationAggregateDeps
}

func NewCertificationAggregate(deps CertificationAggregateDeps) domainagg.CertificationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &certificationAggregate{deps: deps}
}

func (a *certificationAggregate) Contract() domainagg.Contract {
	return domainagg.CertificationAggregateContract
}

func (a *certificationAggregate) RecordAttempt(ctx context.Context, in domainagg.RecordAttemptInput) (domainagg.RecordAttemptResult, error) {
	const op = "Quiz.Certification.RecordAttempt"
	var out domainagg.RecordAttemptResult

	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.TotalQuestions <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "total_questions must be positive", nil)
	}
	if in.CorrectCount < 0 || in.CorrectCount > in.TotalQuestions {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "correct_count out of range", nil)
	}
	if math.IsNaN(in.Score) || in.Score < 0 || in.Score > 100 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "score must be within 0..100", nil)
	}
	if a.deps.Users == nil || a.deps.Progress == nil || a.deps.Attempts == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "certification aggregate repos not configured", nil)
	}

	submittedAt := in.SubmittedAt.UTC()
	if in.SubmittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	details := in.DetailedResults
	if details == nil {
		details = []types.QuizDetailedResult{}
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// The row lock serializes concurrent submissions by the same user, so the
		// max+1 read below cannot race another insert.
		u, err := a.deps.Users.LockByID(dbc, in.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("user not found: %s", in.UserID), err)
			}
			return err
		}

		maxNumber, err := a.deps.Attempts.MaxAttemptNumber(dbc, u.ID)
		if err != nil {
			return err
		}

		row := &types.QuizAttempt{
			ID:               uuid.New(),
			UserID:           u.ID,
			AttemptNumber:    maxNumber + 1,
			Score:            in.Score,
			TotalQuestions:   in.TotalQuestions,
			CorrectAnswers:   in.CorrectCount,
			Passed:           in.Passed,
			TimeTakenSeconds: in.TimeTakenSeconds,
			DetailedResults:  details,
			CreatedAt:        submittedAt,
		}
		if err := a.deps.Attempts.Create(dbc, row); err != nil {
			return err
		}

		out = domainagg.RecordAttemptResult{
			AttemptID:     row.ID,
			AttemptNumber: row.AttemptNumber,
			Passed:        row.Passed,
		}

		if in.Passed {
			certifiedAt := submittedAt
			if err := a.deps.Users.SetCertification(dbc, u.ID, true, &certifiedAt); err != nil {
				return err
			}
			out.CertificationDate = &certifiedAt
			return nil
		}

		n, err := a.deps.Progress.ResetAllForUser(dbc, u.ID)
		if err != nil {
			return err
		}
		if err := a.deps.Users.SetCertification(dbc, u.ID, false, nil); err != nil {
			return err
		}
		out.ProgressReset = true
		out.ModulesReset = n
		return nil
	})
	if err != nil {
		return domainagg.RecordAttemptResult{}, err
	}
	return out, nil
}

func (a *certificationAggregate) ResetStanding(ctx context.Context, in domainagg.ResetStandingInput) (domainagg.ResetStandingResult, error) {
	const op = "Quiz.Certification.ResetStanding"
	var out domainagg.ResetStandingResult

	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.Users == nil || a.deps.Progress == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "certification aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		u, err := a.deps.Users.LockByID(dbc, in.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("user not found: %s", in.UserID), err)
			}
			return err
		}
		n, err := a.deps.Progress.ResetAllForUser(dbc, u.ID)
		if err != nil {
			return err
		}
		if err := a.deps.Users.SetCertification(dbc, u.ID, false, nil); err != nil {
			return err
		}
		out = domainagg.ResetStandingResult{
			UserID:       u.ID,
			WasCertified: u.IsCertified,
			ModulesReset: n,
		}
		return nil
	})
	if err != nil {
		return domainagg.ResetStandingResult{}, err
	}
	a.deps.Base.Log.Info("standing reset", "user_id", in.UserID, "reason", in.Reason, "modules_reset", out.ModulesReset)
	return out, nil
}
