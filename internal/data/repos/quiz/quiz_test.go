package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/data/repos/testutil"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
)

func TestQuestionRepoSampleActive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	for i := 0; i < 20; i++ {
		testutil.SeedQuestion(t, ctx, tx, nil, uuid.NewString(), i%4)
	}
	retired := testutil.SeedQuestion(t, ctx, tx, nil, "retired", 0)
	testutil.Deactivate(t, ctx, tx, retired)

	repo := NewQuestionRepo(db, testutil.Logger(t))
	rows, err := repo.SampleActive(dbc, 15)
	if err != nil {
		t.Fatalf("SampleActive: %v", err)
	}
	if len(rows) != 15 {
		t.Fatalf("SampleActive len: want=15 got=%d", len(rows))
	}
	seen := map[uuid.UUID]bool{}
	for _, q := range rows {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in sample", q.ID)
		}
		seen[q.ID] = true
		if q.ID == retired.ID {
			t.Fatalf("inactive question sampled")
		}
	}

	if n, err := repo.CountActive(dbc); err != nil || n != 20 {
		t.Fatalf("CountActive: n=%d err=%v", n, err)
	}
	got, err := repo.GetByIDs(dbc, []uuid.UUID{retired.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs should resolve inactive questions: err=%v len=%d", err, len(got))
	}
}

func TestQuestionRepoUpsertByText(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewQuestionRepo(db, testutil.Logger(t))

	q := &types.QuizQuestion{Text: "What is phishing?", Options: []string{"a", "b"}, CorrectIndex: 0, Difficulty: "easy", IsActive: true}
	if err := repo.UpsertByText(dbc, q); err != nil {
		t.Fatalf("UpsertByText insert: %v", err)
	}
	upd := &types.QuizQuestion{Text: "What is phishing?", Options: []string{"x", "y", "z"}, CorrectIndex: 2, Difficulty: "hard", IsActive: true}
	if err := repo.UpsertByText(dbc, upd); err != nil {
		t.Fatalf("UpsertByText update: %v", err)
	}
	if upd.ID != q.ID {
		t.Fatalf("expected same id on update")
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{q.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].CorrectIndex != 2 || len(rows[0].Options) != 3 || rows[0].Difficulty != "hard" {
		t.Fatalf("question not updated: %+v", rows[0])
	}
}

func TestAttemptRepoLedger(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u1 := testutil.SeedUser(t, ctx, tx, "ledger1@example.com")
	u2 := testutil.SeedUser(t, ctx, tx, "ledger2@example.com")
	repo := NewAttemptRepo(db, testutil.Logger(t))

	if max, err := repo.MaxAttemptNumber(dbc, u1.ID); err != nil || max != 0 {
		t.Fatalf("MaxAttemptNumber empty: max=%d err=%v", max, err)
	}

	details := []types.QuizDetailedResult{
		{QuestionID: uuid.New(), QuestionText: "q1", Selected: 1, Correct: 1, IsCorrect: true, Explanation: "e1"},
		{QuestionID: uuid.New(), QuestionText: "q2", Selected: -1, Correct: 3, IsCorrect: false, Explanation: "e2"},
	}
	base := time.Now().UTC().Add(-time.Hour)
	seed := []struct {
		user   uuid.UUID
		number int
		score  float64
		passed bool
	}{
		{u1.ID, 1, 60, false},
		{u1.ID, 2, 73.33, false},
		{u1.ID, 3, 86.67, true},
		{u2.ID, 1, 100, true},
	}
	for i, s := range seed {
		a := &types.QuizAttempt{
			UserID:          s.user,
			AttemptNumber:   s.number,
			Score:           s.score,
			TotalQuestions:  15,
			CorrectAnswers:  int(s.score * 15 / 100),
			Passed:          s.passed,
			DetailedResults: details,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(dbc, a); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	if max, err := repo.MaxAttemptNumber(dbc, u1.ID); err != nil || max != 3 {
		t.Fatalf("MaxAttemptNumber: max=%d err=%v", max, err)
	}

	dup := &types.QuizAttempt{UserID: u2.ID, AttemptNumber: 1, Score: 0, TotalQuestions: 1}
	if err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected unique violation on duplicate attempt number")
	}

	rows, err := repo.ListByUserDesc(dbc, u1.ID)
	if err != nil {
		t.Fatalf("ListByUserDesc: %v", err)
	}
	if len(rows) != 3 || rows[0].AttemptNumber != 3 || rows[2].AttemptNumber != 1 {
		t.Fatalf("ListByUserDesc order: %+v", rows)
	}
	if len(rows[0].DetailedResults) != 2 || rows[0].DetailedResults[1] != details[1] {
		t.Fatalf("detailed results did not round-trip: %+v", rows[0].DetailedResults)
	}

	stats, err := repo.Stats(dbc)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalAttempts != 4 || stats.PassedAttempts != 2 || stats.UniqueUsers != 2 {
		t.Fatalf("Stats counts: %+v", stats)
	}
	if stats.MinScore != 60 || stats.MaxScore != 100 || stats.AverageScore != 80 {
		t.Fatalf("Stats scores: %+v", stats)
	}
}
