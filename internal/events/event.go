package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCertificationPassed = "certification.passed"
	TypeCertificationReset  = "certification.reset"
)

// Event is the JSON payload fanned out after a certification change commits.
type Event struct {
	Type          string    `json:"type"`
	UserID        uuid.UUID `json:"user_id"`
	AttemptNumber *int      `json:"attempt_number,omitempty"`
	Score         *float64  `json:"score,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func CertificationPassed(userID uuid.UUID, attemptNumber int, score float64, at time.Time) Event {
	return Event{
		Type:          TypeCertificationPassed,
		UserID:        userID,
		AttemptNumber: &attemptNumber,
		Score:         &score,
		OccurredAt:    at.UTC(),
	}
}

// CertificationReset covers both a failed attempt and an admin reset; attemptNumber is 0 for the latter.
func CertificationReset(userID uuid.UUID, attemptNumber int, score *float64, reason string, at time.Time) Event {
	ev := Event{
		Type:       TypeCertificationReset,
		UserID:     userID,
		Score:      score,
		Reason:     reason,
		OccurredAt: at.UTC(),
	}
	if attemptNumber > 0 {
		ev.AttemptNumber = &attemptNumber
	}
	return ev
}
