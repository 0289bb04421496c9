package certification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/apierr"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

type QuestionsOutput struct {
	Questions []types.PublicQuizQuestion `json:"questions"`
}

// Questions draws a random set of active questions for an eligible user.
func (u Usecases) Questions(ctx context.Context, userID uuid.UUID) (QuestionsOutput, error) {
	if err := u.RequireEligible(ctx, userID, "questions"); err != nil {
		return QuestionsOutput{}, err
	}
	if u.deps.Questions == nil {
		return QuestionsOutput{}, apierr.New(http.StatusInternalServerError, "question_repo_missing", fmt.Errorf("missing deps"))
	}
	rows, err := u.deps.Questions.SampleActive(dbctx.Context{Ctx: ctx}, u.deps.Config.QuestionCount)
	if err != nil {
		return QuestionsOutput{}, apierr.New(http.StatusInternalServerError, "load_questions_failed", err)
	}
	out := QuestionsOutput{Questions: make([]types.PublicQuizQuestion, 0, len(rows))}
	for _, q := range rows {
		if q == nil {
			continue
		}
		out.Questions = append(out.Questions, q.Public())
	}
	return out, nil
}

func (u Usecases) loadBank(ctx context.Context, answers []Answer) (map[uuid.UUID]*types.QuizQuestion, error) {
	ids := make([]uuid.UUID, 0, len(answers))
	seen := map[uuid.UUID]bool{}
	for _, a := range answers {
		if a.QuestionID == uuid.Nil || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		ids = append(ids, a.QuestionID)
	}
	bank := make(map[uuid.UUID]*types.QuizQuestion, len(ids))
	if len(ids) == 0 {
		return bank, nil
	}
	rows, err := u.deps.Questions.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, err
	}
	for _, q := range rows {
		if q != nil {
			bank[q.ID] = q
		}
	}
	return bank, nil
}
