package training

import (
	"github.com/google/uuid"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModuleRepo interface {
	ListActive(dbc dbctx.Context) ([]*types.TrainingModule, error)
	GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingModule, error)
	GetBySlugs(dbc dbctx.Context, slugs []string) ([]*types.TrainingModule, error)
	UpsertBySlug(dbc dbctx.Context, m *types.TrainingModule) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) ListActive(dbc dbctx.Context) ([]*types.TrainingModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TrainingModule
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.TrainingModule
	if err := t.WithContext(dbc.Ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *moduleRepo) GetBySlugs(dbc dbctx.Context, slugs []string) ([]*types.TrainingModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TrainingModule
	if len(slugs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("slug IN ?", slugs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertBySlug inserts m or overwrites the content fields of the module with the same slug.
// m.ID is refreshed from the stored row.
func (r *moduleRepo) UpsertBySlug(dbc dbctx.Context, m *types.TrainingModule) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "content_url", "duration_seconds", "sort_order", "is_active", "updated_at",
			}),
		}).
		Create(m).Error; err != nil {
		return err
	}
	if !m.IsActive {
		if err := t.WithContext(dbc.Ctx).
			Model(&types.TrainingModule{}).
			Where("slug = ?", m.Slug).
			Update("is_active", false).Error; err != nil {
			return err
		}
	}
	var stored types.TrainingModule
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", m.Slug).First(&stored).Error; err != nil {
		return err
	}
	m.ID = stored.ID
	return nil
}
