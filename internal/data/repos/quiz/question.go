package quiz

import (
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type QuestionRepo interface {
	SampleActive(dbc dbctx.Context, limit int) ([]*types.QuizQuestion, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.QuizQuestion, error)
	CountActive(dbc dbctx.Context) (int64, error)
	UpsertByText(dbc dbctx.Context, q *types.QuizQuestion) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

// SampleActive returns up to limit distinct active questions in random order.
func (r *questionRepo) SampleActive(dbc dbctx.Context, limit int) ([]*types.QuizQuestion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizQuestion
	if limit <= 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("RANDOM()").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDs resolves stored questions regardless of their active flag, so a
// question retired mid-quiz still grades.
func (r *questionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.QuizQuestion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizQuestion
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) CountActive(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizQuestion{}).
		Where("is_active = ?", true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// UpsertByText updates the question with the same text or inserts a new one.
func (r *questionRepo) UpsertByText(dbc dbctx.Context, q *types.QuizQuestion) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var existing types.QuizQuestion
	err := t.WithContext(dbc.Ctx).Where("question_text = ?", q.Text).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := t.WithContext(dbc.Ctx).Create(q).Error; err != nil {
			return err
		}
		if !q.IsActive {
			return t.WithContext(dbc.Ctx).Model(q).Update("is_active", false).Error
		}
		return nil
	case err != nil:
		return err
	}
	q.ID = existing.ID
	return t.WithContext(dbc.Ctx).
		Model(&types.QuizQuestion{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"module_id":            q.ModuleID,
			"options":              q.Options,
			"correct_answer_index": q.CorrectIndex,
			"explanation":          q.Explanation,
			"difficulty":           q.Difficulty,
			"is_active":            q.IsActive,
		}).Error
}
