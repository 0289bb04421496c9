package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/awareness-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/events"
	certmod "github.com/yungbote/awareness-backend/internal/modules/certification"
	trainingmod "github.com/yungbote/awareness-backend/internal/modules/training"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"github.com/yungbote/awareness-backend/internal/services"
)

type Services struct {
	Auth services.AuthService
	User services.UserService

	Certification domainagg.CertificationAggregate

	Training trainingmod.Usecases
	Quiz     certmod.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, bus events.Bus, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(log, repos.User)

	certAgg := dataagg.NewCertificationAggregate(dataagg.CertificationAggregateDeps{
		Base: dataagg.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: dataagg.NewGormTxRunner(db),
			Hooks:  dataagg.NewObservabilityHooks(metrics),
		},
		Users:    repos.User,
		Progress: repos.Progress,
		Attempts: repos.Attempt,
	})

	training := trainingmod.New(trainingmod.UsecasesDeps{
		DB:       db,
		Log:      log,
		Users:    repos.User,
		Modules:  repos.Module,
		Progress: repos.Progress,
	})

	quiz := certmod.New(certmod.UsecasesDeps{
		DB:            db,
		Log:           log,
		Metrics:       metrics,
		Events:        events.NewPublisher(bus, log, metrics),
		Users:         repos.User,
		Progress:      repos.Progress,
		Questions:     repos.Question,
		Attempts:      repos.Attempt,
		Certification: certAgg,
		Config:        cfg.Quiz,
	})

	return Services{
		Auth:          authService,
		User:          userService,
		Certification: certAgg,
		Training:      training,
		Quiz:          quiz,
	}
}
