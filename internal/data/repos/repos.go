package repos

import (
	"github.com/yungbote/awareness-backend/internal/data/repos/auth"
	"github.com/yungbote/awareness-backend/internal/data/repos/quiz"
	"github.com/yungbote/awareness-backend/internal/data/repos/training"
	"github.com/yungbote/awareness-backend/internal/data/repos/user"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ModuleRepo = training.ModuleRepo
type ModuleProgressRepo = training.ModuleProgressRepo
type Completion = training.Completion

type QuizQuestionRepo = quiz.QuestionRepo
type QuizAttemptRepo = quiz.AttemptRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return training.NewModuleRepo(db, baseLog)
}
func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
	return training.NewModuleProgressRepo(db, baseLog)
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return quiz.NewQuestionRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return quiz.NewAttemptRepo(db, baseLog)
}
