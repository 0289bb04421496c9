package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/awareness-backend/internal/data/db"
	"github.com/yungbote/awareness-backend/internal/events"
	certmod "github.com/yungbote/awareness-backend/internal/modules/certification"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/envutil"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

const serviceName = "awareness-backend"

type Config struct {
	Port        string
	CORSOrigins []string

	Postgres db.PostgresConfig

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Quiz certmod.Config

	Redis events.RedisConfig

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

// LoadDotEnv reads .env (or the given files) into the process environment without overriding set variables.
func LoadDotEnv(log *logger.Logger, files ...string) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
	}
	if err := godotenv.Load(files...); err != nil && log != nil {
		log.Warn("could not load env file", "error", err)
	}
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		Postgres: db.PostgresConfig{
			URL:             envutil.String("DATABASE_URL", ""),
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "awareness"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Seconds("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),

		Quiz: certmod.Config{
			PassingScore:   envutil.Float("QUIZ_PASSING_SCORE", certmod.DefaultPassingScore),
			QuestionCount:  envutil.Int("QUIZ_QUESTION_COUNT", certmod.DefaultQuestionCount),
			GateSubmission: envutil.Bool("QUIZ_GATE_SUBMISSION", false),
		},

		Redis: events.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "certification-events"),
		},

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", serviceName),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("APP_ENV", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}

	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		cfg.JWTSecretKey = "defaultsecret"
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set; using insecure development secret")
		}
	}
	return cfg
}
