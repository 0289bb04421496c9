package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/domain/quiz"
)

var CertificationAggregateContract = Contract{
	Name:             "Quiz.CertificationAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the attempt ledger append together with the user's certification standing and module progress.",
}

// CertificationAggregate owns a user's standing: the certification flag, their
// module progress and the attempt ledger move together or not at all.
//
// Write failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type CertificationAggregate interface {
	Aggregate

	// RecordAttempt appends the next attempt for the user and applies the pass or fail transition.
	RecordAttempt(ctx context.Context, in RecordAttemptInput) (RecordAttemptResult, error)

	// ResetStanding returns the user to training without writing an attempt.
	ResetStanding(ctx context.Context, in ResetStandingInput) (ResetStandingResult, error)
}

type RecordAttemptInput struct {
	UserID           uuid.UUID
	Score            float64
	CorrectCount     int
	TotalQuestions   int
	Passed           bool
	TimeTakenSeconds *int
	DetailedResults  []quiz.DetailedResult
	SubmittedAt      time.Time
}

type RecordAttemptResult struct {
	AttemptID         uuid.UUID
	AttemptNumber     int
	Passed            bool
	CertificationDate *time.Time
	ProgressReset     bool
	ModulesReset      int64
}

type ResetStandingInput struct {
	UserID  uuid.UUID
	Reason  string
	ResetAt time.Time
}

type ResetStandingResult struct {
	UserID       uuid.UUID
	WasCertified bool
	ModulesReset int64
}
