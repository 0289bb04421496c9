package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

// UserTokenRepo stores issued token pairs. A missing row means the pair is revoked.
type UserTokenRepo interface {
	Create(dbc dbctx.Context, tok *types.UserToken) error
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, tok *types.UserToken) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(tok).Error
}

func (r *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error) {
	return r.getBy(dbc, "access_token", accessToken)
}

func (r *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	return r.getBy(dbc, "refresh_token", refreshToken)
}

func (r *userTokenRepo) getBy(dbc dbctx.Context, column, value string) (*types.UserToken, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if value == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var out types.UserToken
	if err := t.WithContext(dbc.Ctx).
		Where(column+" = ?", value).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteByID hard-deletes so a revoked token can never be matched again.
func (r *userTokenRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&types.UserToken{}).Error
}

func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
