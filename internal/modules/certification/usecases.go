package certification

import (
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/events"
	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

const (
	DefaultPassingScore  = 80.0
	DefaultQuestionCount = 15
)

type Config struct {
	// PassingScore is the inclusive percentage needed to pass.
	PassingScore float64
	// QuestionCount caps how many questions one quiz draws.
	QuestionCount int
	// GateSubmission applies the eligibility check to submissions as well as to question fetches.
	GateSubmission bool
}

func (c Config) withDefaults() Config {
	if c.PassingScore <= 0 || c.PassingScore > 100 {
		c.PassingScore = DefaultPassingScore
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	return c
}

type UsecasesDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Metrics *observability.Metrics
	Events  events.Publisher

	Users     repos.UserRepo
	Progress  repos.ModuleProgressRepo
	Questions repos.QuizQuestionRepo
	Attempts  repos.QuizAttemptRepo

	Certification domainagg.CertificationAggregate

	Config Config
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	deps.Config = deps.Config.withDefaults()
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "certification")
	if deps.Events == nil {
		deps.Events = events.NewPublisher(nil, deps.Log, deps.Metrics)
	}
	return Usecases{deps: deps}
}
