package training

import (
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Completion is the eligibility tally for one user.
type Completion struct {
	Completed int64
	Total     int64
}

type ModuleProgressRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ModuleProgress, error)
	Get(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleProgress, error)
	Upsert(dbc dbctx.Context, p *types.ModuleProgress) error
	CountCompletion(dbc dbctx.Context, userID uuid.UUID) (Completion, error)
	ResetAllForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type moduleProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
	return &moduleProgressRepo{db: db, log: baseLog.With("repo", "ModuleProgressRepo")}
}

func (r *moduleProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ModuleProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ModuleProgress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleProgressRepo) Get(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ModuleProgress
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the row keyed by (user_id, module_id).
func (r *moduleProgressRepo) Upsert(dbc dbctx.Context, p *types.ModuleProgress) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed", "watched_seconds", "completed_at", "updated_at"}),
		}).
		Create(p).Error
}

// CountCompletion counts active modules and how many of them the user has completed.
func (r *moduleProgressRepo) CountCompletion(dbc dbctx.Context, userID uuid.UUID) (Completion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out Completion
	err := t.WithContext(dbc.Ctx).
		Table("training_module AS m").
		Select("COUNT(m.id) AS total, COUNT(CASE WHEN mp.is_completed = ? THEN 1 END) AS completed", true).
		Joins("LEFT JOIN module_progress AS mp ON mp.module_id = m.id AND mp.user_id = ?", userID).
		Where("m.is_active = ? AND m.deleted_at IS NULL", true).
		Scan(&out).Error
	if err != nil {
		return Completion{}, err
	}
	return out, nil
}

// ResetAllForUser marks every progress row of the user incomplete.
func (r *moduleProgressRepo) ResetAllForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ModuleProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"is_completed":    false,
			"watched_seconds": 0,
			"completed_at":    nil,
			"updated_at":      time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
