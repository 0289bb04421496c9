package db

import (
	"fmt"

	types "github.com/yungbote/awareness-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// identity + auth
		&types.User{},
		&types.UserToken{},

		// training content
		&types.TrainingModule{},
		&types.ModuleProgress{},

		// quiz + ledger
		&types.QuizQuestion{},
		&types.QuizAttempt{},
	)
}

// EnsureQuizIndexes adds the read-path indexes AutoMigrate cannot express.
func EnsureQuizIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_quiz_attempt_user_created",
			sql:  `CREATE INDEX IF NOT EXISTS idx_quiz_attempt_user_created ON quiz_attempt(user_id, created_at DESC);`,
		},
		{
			name: "idx_quiz_question_active",
			sql:  `CREATE INDEX IF NOT EXISTS idx_quiz_question_active ON quiz_question(id) WHERE is_active = true AND deleted_at IS NULL;`,
		},
		{
			name: "idx_training_module_active_order",
			sql:  `CREATE INDEX IF NOT EXISTS idx_training_module_active_order ON training_module(sort_order) WHERE is_active = true AND deleted_at IS NULL;`,
		},
		{
			name: "idx_module_progress_user_completed",
			sql:  `CREATE INDEX IF NOT EXISTS idx_module_progress_user_completed ON module_progress(user_id, is_completed);`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// Migrate runs AutoMigrateAll followed by the index pass.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := EnsureQuizIndexes(db); err != nil {
		return err
	}
	return nil
}
