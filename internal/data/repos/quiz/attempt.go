package quiz

import (
	"math"

	"github.com/google/uuid"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// AttemptRepo is the append-only attempt ledger. There is deliberately no update or delete.
type AttemptRepo interface {
	Create(dbc dbctx.Context, attempt *types.QuizAttempt) error
	MaxAttemptNumber(dbc dbctx.Context, userID uuid.UUID) (int, error)
	ListByUserDesc(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error)
	Stats(dbc dbctx.Context) (types.QuizStats, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(dbc dbctx.Context, attempt *types.QuizAttempt) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(attempt).Error
}

func (r *attemptRepo) MaxAttemptNumber(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Select("COALESCE(MAX(attempt_number), 0)").
		Where("user_id = ?", userID).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *attemptRepo) ListByUserDesc(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuizAttempt
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("attempt_number DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) Stats(dbc dbctx.Context) (types.QuizStats, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.QuizStats
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Select(`COUNT(*) AS total_attempts,
			COUNT(CASE WHEN passed = ? THEN 1 END) AS passed_attempts,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(MIN(score), 0) AS min_score,
			COALESCE(MAX(score), 0) AS max_score,
			COUNT(DISTINCT user_id) AS unique_users`, true).
		Scan(&out).Error; err != nil {
		return types.QuizStats{}, err
	}
	out.AverageScore = math.Round(out.AverageScore*100) / 100
	return out, nil
}
