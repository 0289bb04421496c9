package catalog

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/data/repos"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

//go:embed default_catalog.yaml
var defaultCatalogFS embed.FS

type Catalog struct {
	Modules []Module `yaml:"modules"`
}

type Module struct {
	Slug            string         `yaml:"slug"`
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	ContentURL      string         `yaml:"content_url"`
	DurationSeconds int            `yaml:"duration_seconds"`
	SortOrder       int            `yaml:"sort_order"`
	Active          *bool          `yaml:"active"`
	Questions       []Question `yaml:"questions"`
}

type Question struct {
	Text        string   `yaml:"text"`
	Options     []string `yaml:"options"`
	Correct     int      `yaml:"correct"`
	Explanation string   `yaml:"explanation"`
	Difficulty  string   `yaml:"difficulty"`
	Active      *bool    `yaml:"active"`
}

type Summary struct {
	Modules   int
	Questions int
	// NewModules counts slugs that were not stored before this run.
	NewModules int
	// ActiveQuestions is the size of the drawable bank after the run.
	ActiveQuestions int64
}

// Load reads a catalog file, or the embedded default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if strings.TrimSpace(path) == "" {
		data, err = defaultCatalogFS.ReadFile("default_catalog.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateCatalog(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateCatalog(c *Catalog) error {
	if c == nil || len(c.Modules) == 0 {
		return fmt.Errorf("catalog has no modules")
	}
	seenSlug := map[string]bool{}
	seenText := map[string]bool{}
	for i := range c.Modules {
		m := &c.Modules[i]
		m.Slug = strings.TrimSpace(m.Slug)
		if m.Slug == "" {
			return fmt.Errorf("module %d: slug is empty", i)
		}
		if seenSlug[m.Slug] {
			return fmt.Errorf("module %s: duplicate slug", m.Slug)
		}
		seenSlug[m.Slug] = true
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("module %s: title is empty", m.Slug)
		}
		if m.DurationSeconds < 0 {
			return fmt.Errorf("module %s: duration_seconds is negative", m.Slug)
		}
		for j := range m.Questions {
			q := &m.Questions[j]
			q.Text = strings.TrimSpace(q.Text)
			if q.Text == "" {
				return fmt.Errorf("module %s question %d: text is empty", m.Slug, j)
			}
			if seenText[q.Text] {
				return fmt.Errorf("module %s question %d: duplicate text", m.Slug, j)
			}
			seenText[q.Text] = true
			if len(q.Options) < 2 {
				return fmt.Errorf("module %s question %d: needs at least two options", m.Slug, j)
			}
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return fmt.Errorf("module %s question %d: correct index %d out of range", m.Slug, j, q.Correct)
			}
			switch q.Difficulty {
			case "":
				q.Difficulty = "medium"
			case "easy", "medium", "hard":
			default:
				return fmt.Errorf("module %s question %d: unknown difficulty %q", m.Slug, j, q.Difficulty)
			}
		}
	}
	return nil
}

type Seeder struct {
	db        *gorm.DB
	log       *logger.Logger
	modules   repos.ModuleRepo
	questions repos.QuizQuestionRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger, modules repos.ModuleRepo, questions repos.QuizQuestionRepo) *Seeder {
	return &Seeder{db: db, log: log.With("component", "CatalogSeeder"), modules: modules, questions: questions}
}

// Apply upserts every module by slug and every question by text in one transaction.
func (s *Seeder) Apply(ctx context.Context, c *Catalog) (Summary, error) {
	var sum Summary
	if c == nil {
		return sum, fmt.Errorf("nil catalog")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		slugs := make([]string, 0, len(c.Modules))
		for _, ym := range c.Modules {
			slugs = append(slugs, ym.Slug)
		}
		existing, err := s.modules.GetBySlugs(dbc, slugs)
		if err != nil {
			return fmt.Errorf("lookup modules: %w", err)
		}
		sum.NewModules = len(slugs) - len(existing)

		for _, ym := range c.Modules {
			m := &types.TrainingModule{
				Slug:            ym.Slug,
				Title:           ym.Title,
				Description:     ym.Description,
				ContentURL:      ym.ContentURL,
				DurationSeconds: ym.DurationSeconds,
				SortOrder:       ym.SortOrder,
				IsActive:        active(ym.Active),
			}
			if err := s.modules.UpsertBySlug(dbc, m); err != nil {
				return fmt.Errorf("upsert module %s: %w", ym.Slug, err)
			}
			sum.Modules++

			moduleID := m.ID
			for _, yq := range ym.Questions {
				q := &types.QuizQuestion{
					ModuleID:     &moduleID,
					Text:         yq.Text,
					Options:      yq.Options,
					CorrectIndex: yq.Correct,
					Explanation:  yq.Explanation,
					Difficulty:   yq.Difficulty,
					IsActive:     active(yq.Active),
				}
				if err := s.questions.UpsertByText(dbc, q); err != nil {
					return fmt.Errorf("upsert question %q: %w", yq.Text, err)
				}
				sum.Questions++
			}
		}
		n, err := s.questions.CountActive(dbc)
		if err != nil {
			return fmt.Errorf("count active questions: %w", err)
		}
		sum.ActiveQuestions = n
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("catalog applied", "modules", sum.Modules, "new_modules", sum.NewModules, "questions", sum.Questions, "active_questions", sum.ActiveQuestions)
	return sum, nil
}

func active(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
