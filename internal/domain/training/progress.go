package training

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/domain/user"
	"gorm.io/gorm"
)

// ModuleProgress tracks one user's completion of one module.
type ModuleProgress struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_user_module,priority:1" json:"user_id"`
	User           *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ModuleID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_user_module,priority:2;index" json:"module_id"`
	Module         *Module    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"-"`
	IsCompleted    bool       `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	WatchedSeconds int        `gorm:"not null;default:0;column:watched_seconds" json:"watched_seconds"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

func (p *ModuleProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
