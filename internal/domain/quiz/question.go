package quiz

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/domain/training"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID     *uuid.UUID                  `gorm:"type:uuid;index;column:module_id" json:"module_id,omitempty"`
	Module       *training.Module            `gorm:"constraint:OnDelete:SET NULL;foreignKey:ModuleID;references:ID" json:"-"`
	Text         string                      `gorm:"not null;column:question_text" json:"question_text"`
	Options      datatypes.JSONSlice[string] `gorm:"not null;column:options" json:"options"`
	CorrectIndex int                         `gorm:"not null;column:correct_answer_index" json:"-"`
	Explanation  string                      `gorm:"column:explanation" json:"-"`
	Difficulty   string                      `gorm:"not null;default:'medium';column:difficulty" json:"difficulty"`
	IsActive     bool                        `gorm:"not null;default:true;column:is_active;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "quiz_question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// PublicQuestion is what a quiz taker sees: no answer key, no explanation.
type PublicQuestion struct {
	ID         uuid.UUID  `json:"id"`
	Text       string     `json:"text"`
	Options    []string   `json:"options"`
	Difficulty string     `json:"difficulty"`
	ModuleID   *uuid.UUID `json:"moduleId"`
}

func (q *Question) Public() PublicQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{
		ID:         q.ID,
		Text:       q.Text,
		Options:    opts,
		Difficulty: q.Difficulty,
		ModuleID:   q.ModuleID,
	}
}
