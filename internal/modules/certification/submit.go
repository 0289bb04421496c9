package certification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	types "github.com/yungbote/awareness-backend/internal/domain"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/domain/quiz"
	"github.com/yungbote/awareness-backend/internal/events"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
)

const (
	passMessage = "Congratulations! You passed the quiz and are now certified."
	failMessage = "You did not reach the passing score. Your module progress has been reset; please review the training and try again."
)

// SubmitAnswer is an answer as it arrives on the wire. A nil Selected means unanswered.
type SubmitAnswer struct {
	QuestionID string
	Selected   *int
}

type SubmitInput struct {
	UserID           uuid.UUID
	Answers          []SubmitAnswer
	TimeTakenSeconds *int
}

type SubmitOutput struct {
	Success           bool                       `json:"success"`
	Passed            bool                       `json:"passed"`
	Score             float64                    `json:"score"`
	CorrectCount      int                        `json:"correctCount"`
	TotalQuestions    int                        `json:"totalQuestions"`
	AttemptNumber     int                        `json:"attemptNumber"`
	Message           string                     `json:"message"`
	DetailedResults   []types.QuizDetailedResult `json:"detailedResults"`
	CertificationDate *time.Time                 `json:"certification_date,omitempty"`
	ProgressReset     bool                       `json:"progressReset,omitempty"`
}

// Submit scores a quiz and records the attempt together with its certification transition.
func (u Usecases) Submit(ctx context.Context, in SubmitInput) (SubmitOutput, error) {
	ctx, span := observability.Tracer().Start(ctx, "certification.Submit")
	defer span.End()

	out, err := u.submit(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SubmitOutput{}, err
	}
	span.SetAttributes(
		attribute.Int("quiz.attempt_number", out.AttemptNumber),
		attribute.Float64("quiz.score", out.Score),
		attribute.Bool("quiz.passed", out.Passed),
	)
	return out, nil
}

func (u Usecases) submit(ctx context.Context, in SubmitInput) (SubmitOutput, error) {
	if in.UserID == uuid.Nil {
		return SubmitOutput{}, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if len(in.Answers) == 0 {
		u.deps.Metrics.IncQuizRejected("invalid")
		return SubmitOutput{}, apierr.New(http.StatusBadRequest, "answers_required", fmt.Errorf("answers must be a non-empty array"))
	}
	if in.TimeTakenSeconds != nil && *in.TimeTakenSeconds < 0 {
		u.deps.Metrics.IncQuizRejected("invalid")
		return SubmitOutput{}, apierr.New(http.StatusBadRequest, "invalid_time_taken", fmt.Errorf("time_taken_seconds must not be negative"))
	}
	if u.deps.Questions == nil || u.deps.Certification == nil {
		return SubmitOutput{}, apierr.New(http.StatusInternalServerError, "certification_deps_missing", fmt.Errorf("missing deps"))
	}

	if u.deps.Config.GateSubmission {
		if err := u.RequireEligible(ctx, in.UserID, "submit"); err != nil {
			return SubmitOutput{}, err
		}
	}

	answers := normalizeAnswers(in.Answers)
	bank, err := u.loadBank(ctx, answers)
	if err != nil {
		return SubmitOutput{}, apierr.New(http.StatusInternalServerError, "load_questions_failed", err)
	}
	res := Score(answers, bank, u.deps.Config.PassingScore)

	submittedAt := time.Now().UTC()
	rec, err := u.deps.Certification.RecordAttempt(ctx, domainagg.RecordAttemptInput{
		UserID:           in.UserID,
		Score:            res.Score,
		CorrectCount:     res.CorrectCount,
		TotalQuestions:   res.TotalQuestions,
		Passed:           res.Passed,
		TimeTakenSeconds: in.TimeTakenSeconds,
		DetailedResults:  res.DetailedResults,
		SubmittedAt:      submittedAt,
	})
	if err != nil {
		return SubmitOutput{}, mapAggregateError(err, "submission_failed")
	}

	u.deps.Metrics.ObserveQuizSubmission(rec.Passed, res.Score)
	u.deps.Log.Info("quiz submitted",
		"user_id", in.UserID,
		"attempt_number", rec.AttemptNumber,
		"score", res.Score,
		"passed", rec.Passed,
		"modules_reset", rec.ModulesReset,
	)

	out := SubmitOutput{
		Success:         true,
		Passed:          rec.Passed,
		Score:           res.Score,
		CorrectCount:    res.CorrectCount,
		TotalQuestions:  res.TotalQuestions,
		AttemptNumber:   rec.AttemptNumber,
		DetailedResults: res.DetailedResults,
	}
	if rec.Passed {
		out.Message = passMessage
		out.CertificationDate = rec.CertificationDate
		u.deps.Events.Publish(ctx, events.CertificationPassed(in.UserID, rec.AttemptNumber, res.Score, submittedAt))
	} else {
		out.Message = failMessage
		out.ProgressReset = rec.ProgressReset
		score := res.Score
		u.deps.Events.Publish(ctx, events.CertificationReset(in.UserID, rec.AttemptNumber, &score, "quiz_failed", submittedAt))
	}
	return out, nil
}

func normalizeAnswers(in []SubmitAnswer) []Answer {
	out := make([]Answer, 0, len(in))
	for _, a := range in {
		// Unparseable ids stay in the list as uuid.Nil so they count toward the total.
		id, err := uuid.Parse(strings.TrimSpace(a.QuestionID))
		if err != nil {
			id = uuid.Nil
		}
		selected := quiz.Unanswered
		if a.Selected != nil && *a.Selected >= 0 {
			selected = *a.Selected
		}
		out = append(out, Answer{QuestionID: id, Selected: selected})
	}
	return out
}

// mapAggregateError turns an aggregate failure into an API error. Nothing was committed when
// it fails, so data-layer failures are marked retryable unless a precondition or invariant broke.
func mapAggregateError(err error, code string) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	c := domainagg.CodeOf(err)
	switch c {
	case domainagg.CodeValidation:
		return apierr.New(http.StatusBadRequest, "invalid_submission", err)
	case domainagg.CodeNotFound:
		return apierr.New(http.StatusNotFound, "user_not_found", err)
	default:
		retryable := c == "" || c == domainagg.CodeInternal || c.Transient()
		return apierr.New(http.StatusInternalServerError, code, err).WithDetails(map[string]any{"retryable": retryable})
	}
}
