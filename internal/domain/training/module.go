package training

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module is one unit of required training content.
type Module struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug            string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	Description     string    `gorm:"column:description" json:"description"`
	ContentURL      string    `gorm:"column:content_url" json:"content_url"`
	DurationSeconds int       `gorm:"not null;default:0;column:duration_seconds" json:"duration_seconds"`
	SortOrder       int       `gorm:"not null;default:0;column:sort_order;index" json:"sort_order"`
	IsActive        bool      `gorm:"not null;default:true;column:is_active;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Module) TableName() string { return "training_module" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
