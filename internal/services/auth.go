package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	types "github.com/yungbote/awareness-backend/internal/domain"
	userdomain "github.com/yungbote/awareness-backend/internal/domain/user"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
	"github.com/yungbote/awareness-backend/internal/platform/ctxutil"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

const minPasswordLength = 8

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_email", fmt.Errorf("invalid email"))
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.New(http.StatusBadRequest, "weak_password", fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}
	if first == "" || last == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("first_name and last_name are required"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "hash_password_failed", err)
	}

	user := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   string(hash),
		FirstName:  first,
		LastName:   last,
		Role:       types.RoleEmployee,
		Department: strings.TrimSpace(in.Department),
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
		}
		_, err = as.userRepo.Create(dbc, []*types.User{user})
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apierr.New(http.StatusInternalServerError, "create_user_failed", err)
	}
	as.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return TokenPair{}, apierr.New(http.StatusBadRequest, "missing_credentials", nil)
	}

	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return TokenPair{}, apierr.New(http.StatusInternalServerError, "load_user_failed", err)
	}
	// Same error for unknown email and wrong password.
	if len(users) == 0 || users[0] == nil {
		return TokenPair{}, apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return TokenPair{}, apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}

	if n, err := as.userTokenRepo.DeleteExpired(dbctx.Context{Ctx: ctx}, time.Now()); err != nil {
		as.log.Warn("purging expired tokens failed", "error", err)
	} else if n > 0 {
		as.log.Debug("purged expired tokens", "count", n)
	}

	pair, err := as.issueTokens(dbctx.Context{Ctx: ctx}, user)
	if err != nil {
		return TokenPair{}, apierr.New(http.StatusInternalServerError, "issue_tokens_failed", err)
	}
	return pair, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return TokenPair{}, apierr.New(http.StatusBadRequest, "missing_refresh_token", nil)
	}

	var pair TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusUnauthorized, "invalid_refresh_token", nil)
		}
		if err != nil {
			return err
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.DeleteByID(dbc, existing.ID); err != nil {
				return err
			}
			return apierr.New(http.StatusUnauthorized, "refresh_token_expired", nil)
		}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return apierr.New(http.StatusUnauthorized, "invalid_refresh_token", fmt.Errorf("token owner missing"))
		}
		p, err := as.issueTokens(dbc, users[0])
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByID(dbc, existing.ID); err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return TokenPair{}, ae
		}
		as.log.Warn("refresh failed", "error", err)
		return TokenPair{}, apierr.New(http.StatusInternalServerError, "refresh_failed", err)
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByAccessToken(dbc, rd.TokenString)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return apierr.New(http.StatusInternalServerError, "logout_failed", err)
		}
		if err := as.userTokenRepo.DeleteByID(dbc, existing.ID); err != nil {
			return apierr.New(http.StatusInternalServerError, "logout_failed", err)
		}
		return nil
	})
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (TokenPair, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh := uuid.NewString()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if err := as.userTokenRepo.Create(dbc, row); err != nil {
		return TokenPair{}, fmt.Errorf("create user token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates an access token and attaches the caller to ctx.
// A token removed by logout is rejected even before it expires.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	if !userdomain.ValidRole(claims.Role) {
		return ctx, fmt.Errorf("unknown role %q in token", claims.Role)
	}
	stored, err := as.userTokenRepo.GetByAccessToken(dbctx.Context{Ctx: ctx}, tokenString)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ctx, fmt.Errorf("token revoked")
	}
	if err != nil {
		return ctx, fmt.Errorf("lookup token: %w", err)
	}
	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: stored.RefreshToken,
		UserID:       userID,
		Role:         claims.Role,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
