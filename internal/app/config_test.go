package app

import (
	"testing"
	"time"

	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"JWT_SECRET_KEY", "QUIZ_PASSING_SCORE", "QUIZ_QUESTION_COUNT", "QUIZ_GATE_SUBMISSION", "REDIS_ADDR", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Quiz.PassingScore != 80 || cfg.Quiz.QuestionCount != 15 || cfg.Quiz.GateSubmission {
		t.Fatalf("unexpected quiz defaults: %+v", cfg.Quiz)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttls: %v %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.JWTSecretKey == "" {
		t.Fatalf("expected development secret fallback")
	}
	if cfg.Redis.Addr != "" || cfg.Redis.Channel != "certification-events" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("QUIZ_PASSING_SCORE", "70")
	t.Setenv("QUIZ_QUESTION_COUNT", "10")
	t.Setenv("QUIZ_GATE_SUBMISSION", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg := LoadConfig(logger.Nop())
	if cfg.Quiz.PassingScore != 70 || cfg.Quiz.QuestionCount != 10 || !cfg.Quiz.GateSubmission {
		t.Fatalf("quiz overrides not applied: %+v", cfg.Quiz)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if got := cfg.Postgres.DSN(); got != "postgres://u:p@db:5432/x" {
		t.Fatalf("dsn: %s", got)
	}
}
