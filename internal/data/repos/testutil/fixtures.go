package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      types.RoleEmployee,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, order int, active bool) *types.TrainingModule {
	tb.Helper()
	m := &types.TrainingModule{
		ID:              uuid.New(),
		Slug:            slug,
		Title:           "Module " + slug,
		DurationSeconds: 600,
		SortOrder:       order,
		IsActive:        true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	// is_active defaults to true, so a false value has to be written explicitly.
	if !active {
		if err := tx.WithContext(ctx).Model(m).Update("is_active", false).Error; err != nil {
			tb.Fatalf("deactivate module: %v", err)
		}
		m.IsActive = false
	}
	return m
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID, completed bool) *types.ModuleProgress {
	tb.Helper()
	p := &types.ModuleProgress{
		ID:             uuid.New(),
		UserID:         userID,
		ModuleID:       moduleID,
		IsCompleted:    completed,
		WatchedSeconds: 120,
	}
	if completed {
		now := time.Now().UTC()
		p.CompletedAt = &now
		p.WatchedSeconds = 600
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

// SeedQuestion stores an active four-option question whose answer key is correct.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID *uuid.UUID, text string, correct int) *types.QuizQuestion {
	tb.Helper()
	q := &types.QuizQuestion{
		ID:           uuid.New(),
		ModuleID:     moduleID,
		Text:         text,
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: correct,
		Explanation:  "because " + text,
		Difficulty:   "medium",
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func Deactivate(tb testing.TB, ctx context.Context, tx *gorm.DB, model any) {
	tb.Helper()
	if err := tx.WithContext(ctx).Model(model).Update("is_active", false).Error; err != nil {
		tb.Fatalf("deactivate: %v", err)
	}
}
