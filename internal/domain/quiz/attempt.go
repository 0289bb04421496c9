package quiz

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Unanswered marks a question the taker skipped.
const Unanswered = -1

// DetailedResult is the per-question breakdown returned to the taker and kept on the attempt.
type DetailedResult struct {
	QuestionID   uuid.UUID `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Selected     int       `json:"selected"`
	Correct      int       `json:"correct"`
	IsCorrect    bool      `json:"isCorrect"`
	Explanation  string    `json:"explanation"`
}

// Attempt is one scored submission. Rows are append-only.
type Attempt struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_attempt_user_number,priority:1" json:"user_id"`
	User             *user.User                          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	AttemptNumber    int                                 `gorm:"not null;uniqueIndex:idx_quiz_attempt_user_number,priority:2;column:attempt_number" json:"attempt_number"`
	Score            float64                             `gorm:"type:numeric(5,2);not null;column:score" json:"score"`
	TotalQuestions   int                                 `gorm:"not null;column:total_questions" json:"total_questions"`
	CorrectAnswers   int                                 `gorm:"not null;column:correct_answers" json:"correct_answers"`
	Passed           bool                                `gorm:"not null;column:passed" json:"passed"`
	TimeTakenSeconds *int                                `gorm:"column:time_taken_seconds" json:"time_taken_seconds"`
	DetailedResults  datatypes.JSONSlice[DetailedResult] `gorm:"column:detailed_results" json:"detailed_results"`
	CreatedAt        time.Time                           `gorm:"not null;index;column:created_at" json:"created_at"`
}

func (Attempt) TableName() string { return "quiz_attempt" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Stats summarizes the whole attempt ledger.
type Stats struct {
	TotalAttempts  int64   `json:"totalAttempts"`
	PassedAttempts int64   `json:"passedAttempts"`
	AverageScore   float64 `json:"averageScore"`
	MinScore       float64 `json:"minScore"`
	MaxScore       float64 `json:"maxScore"`
	UniqueUsers    int64   `json:"uniqueUsers"`
}
