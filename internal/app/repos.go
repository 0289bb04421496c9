package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	Module   repos.ModuleRepo
	Progress repos.ModuleProgressRepo

	Question repos.QuizQuestionRepo
	Attempt  repos.QuizAttemptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Module:    repos.NewModuleRepo(db, log),
		Progress:  repos.NewModuleProgressRepo(db, log),
		Question:  repos.NewQuizQuestionRepo(db, log),
		Attempt:   repos.NewQuizAttemptRepo(db, log),
	}
}
