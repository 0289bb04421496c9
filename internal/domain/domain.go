package domain

import (
	"github.com/yungbote/awareness-backend/internal/domain/auth"
	"github.com/yungbote/awareness-backend/internal/domain/quiz"
	"github.com/yungbote/awareness-backend/internal/domain/training"
	"github.com/yungbote/awareness-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type TrainingModule = training.Module
type ModuleProgress = training.ModuleProgress

type QuizQuestion = quiz.Question
type PublicQuizQuestion = quiz.PublicQuestion
type QuizAttempt = quiz.Attempt
type QuizDetailedResult = quiz.DetailedResult
type QuizStats = quiz.Stats

const (
	RoleEmployee = user.RoleEmployee
	RoleManager  = user.RoleManager
	RoleAdmin    = user.RoleAdmin
)
