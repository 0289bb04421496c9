package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apphttp "github.com/yungbote/awareness-backend/internal/http"
	httpH "github.com/yungbote/awareness-backend/internal/http/handlers"
	httpMW "github.com/yungbote/awareness-backend/internal/http/middleware"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Training *httpH.TrainingHandler
	Quiz     *httpH.QuizHandler
	Admin    *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(services.Auth),
		User:     httpH.NewUserHandler(services.User),
		Training: httpH.NewTrainingHandler(services.Training),
		Quiz:     httpH.NewQuizHandler(services.Quiz),
		Admin:    httpH.NewAdminHandler(services.Quiz),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	otelService := ""
	if cfg.Otel.Enabled {
		otelService = cfg.Otel.ServiceName
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     otelService,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		TrainingHandler: handlers.Training,
		QuizHandler:     handlers.Quiz,
		AdminHandler:    handlers.Admin,
	})
}
