package certification

import (
	"math"

	"github.com/google/uuid"

	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/domain/quiz"
)

// Answer is one submitted selection. Selected is quiz.Unanswered for a skipped question.
type Answer struct {
	QuestionID uuid.UUID
	Selected   int
}

type Result struct {
	Score           float64
	CorrectCount    int
	TotalQuestions  int
	Passed          bool
	DetailedResults []types.QuizDetailedResult
}

// Score grades answers against the stored questions.
//
// The denominator is the number of submitted answers. An answer whose question is
// missing from bank still counts toward it but produces no detail entry and is never
// correct. Every resolved answer is graded on its own, so a repeated question id is
// graded and reported once per occurrence.
func Score(answers []Answer, bank map[uuid.UUID]*types.QuizQuestion, passingScore float64) Result {
	out := Result{
		TotalQuestions:  len(answers),
		DetailedResults: make([]types.QuizDetailedResult, 0, len(answers)),
	}
	if len(answers) == 0 {
		return out
	}

	for _, a := range answers {
		q, ok := bank[a.QuestionID]
		if !ok || q == nil {
			continue
		}

		selected := a.Selected
		if selected < 0 {
			selected = quiz.Unanswered
		}
		isCorrect := selected != quiz.Unanswered && selected == q.CorrectIndex
		if isCorrect {
			out.CorrectCount++
		}
		out.DetailedResults = append(out.DetailedResults, types.QuizDetailedResult{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Selected:     selected,
			Correct:      q.CorrectIndex,
			IsCorrect:    isCorrect,
			Explanation:  q.Explanation,
		})
	}

	out.Score = roundScore(float64(out.CorrectCount) * 100 / float64(out.TotalQuestions))
	out.Passed = out.Score >= passingScore
	return out
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
