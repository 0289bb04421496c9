package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/awareness-backend/internal/domain"
	httpH "github.com/yungbote/awareness-backend/internal/http/handlers"
	httpMW "github.com/yungbote/awareness-backend/internal/http/middleware"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	TrainingHandler *httpH.TrainingHandler
	QuizHandler     *httpH.QuizHandler
	AdminHandler    *httpH.AdminHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		if cfg.TrainingHandler != nil {
			protected.GET("/modules", cfg.TrainingHandler.ListModules)
			protected.POST("/modules/:id/progress", cfg.TrainingHandler.RecordProgress)
		}

		if cfg.QuizHandler != nil {
			protected.GET("/quiz/questions", cfg.QuizHandler.Questions)
			protected.POST("/quiz/submit", cfg.QuizHandler.Submit)
			protected.GET("/quiz/history", cfg.QuizHandler.History)
			protected.GET("/quiz/can-take", cfg.QuizHandler.CanTake)
			protected.GET("/quiz/stats", cfg.AuthMiddleware.RequireRole(types.RoleAdmin), cfg.QuizHandler.Stats)
		}

		if cfg.AdminHandler != nil {
			protected.GET("/admin/users/:id/attempts",
				cfg.AuthMiddleware.RequireRole(types.RoleAdmin, types.RoleManager),
				cfg.AdminHandler.UserAttempts)
			protected.POST("/admin/users/:id/reset",
				cfg.AuthMiddleware.RequireRole(types.RoleAdmin),
				cfg.AdminHandler.ResetUser)
		}
	}

	return r
}
