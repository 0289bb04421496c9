package aggregates_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/awareness-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/awareness-backend/internal/data/repos"
	repotest "github.com/yungbote/awareness-backend/internal/data/repos/testutil"
	types "github.com/yungbote/awareness-backend/internal/domain"
	domainagg "github.com/yungbote/awareness-backend/internal/domain/aggregates"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

type certFixture struct {
	db       *gorm.DB
	users    repos.UserRepo
	progress repos.ModuleProgressRepo
	attempts repos.QuizAttemptRepo
	user     *types.User
	modules  []*types.TrainingModule
}

func newCertFixture(t *testing.T) *certFixture {
	t.Helper()
	return newCertFixtureOn(t, repotest.DB(t))
}

func newCertFixtureOn(t *testing.T, db *gorm.DB) *certFixture {
	t.Helper()
	log := repotest.Logger(t)
	ctx := context.Background()

	f := &certFixture{
		db:       db,
		users:    repos.NewUserRepo(db, log),
		progress: repos.NewModuleProgressRepo(db, log),
		attempts: repos.NewQuizAttemptRepo(db, log),
	}
	f.user = repotest.SeedUser(t, ctx, db, "cert@example.com")
	f.modules = []*types.TrainingModule{
		repotest.SeedModule(t, ctx, db, "passwords", 1, true),
		repotest.SeedModule(t, ctx, db, "phishing", 2, true),
	}
	for _, m := range f.modules {
		repotest.SeedProgress(t, ctx, db, f.user.ID, m.ID, true)
	}
	return f
}

func (f *certFixture) aggregate(base aggregates.BaseDeps) domainagg.CertificationAggregate {
	if base.DB == nil {
		base.DB = f.db
	}
	return aggregates.NewCertificationAggregate(aggregates.CertificationAggregateDeps{
		Base:     base,
		Users:    f.users,
		Progress: f.progress,
		Attempts: f.attempts,
	})
}

func (f *certFixture) reload(t *testing.T) (*types.User, repos.Completion, []*types.QuizAttempt) {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}
	us, err := f.users.GetByIDs(dbc, []uuid.UUID{f.user.ID})
	if err != nil || len(us) != 1 {
		t.Fatalf("reload user: err=%v len=%d", err, len(us))
	}
	c, err := f.progress.CountCompletion(dbc, f.user.ID)
	if err != nil {
		t.Fatalf("reload completion: %v", err)
	}
	rows, err := f.attempts.ListByUserDesc(dbc, f.user.ID)
	if err != nil {
		t.Fatalf("reload attempts: %v", err)
	}
	return us[0], c, rows
}

func (f *certFixture) completeAll(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	for _, m := range f.modules {
		p := &types.ModuleProgress{UserID: f.user.ID, ModuleID: m.ID, IsCompleted: true, WatchedSeconds: 600, CompletedAt: &now}
		if err := f.progress.Upsert(dbctx.Context{Ctx: context.Background()}, p); err != nil {
			t.Fatalf("complete module: %v", err)
		}
	}
}

func sampleDetails() []types.QuizDetailedResult {
	return []types.QuizDetailedResult{
		{QuestionID: uuid.New(), QuestionText: "Report a phishing mail?", Selected: 2, Correct: 2, IsCorrect: true, Explanation: "Use the report button."},
		{QuestionID: uuid.New(), QuestionText: "Reuse passwords?", Selected: -1, Correct: 0, IsCorrect: false, Explanation: "Never."},
	}
}

func TestCertificationRecordAttemptPassCertifies(t *testing.T) {
	f := newCertFixture(t)
	hooks := &aggtest.HooksRecorder{}
	agg := f.aggregate(aggregates.BaseDeps{Hooks: hooks})

	submittedAt := time.Now().UTC().Truncate(time.Second)
	taken := 312
	details := sampleDetails()
	res, err := agg.RecordAttempt(context.Background(), domainagg.RecordAttemptInput{
		UserID:           f.user.ID,
		Score:            80,
		CorrectCount:     12,
		TotalQuestions:   15,
		Passed:           true,
		TimeTakenSeconds: &taken,
		DetailedResults:  details,
		SubmittedAt:      submittedAt,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if res.AttemptNumber != 1 || !res.Passed || res.ProgressReset {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.CertificationDate == nil || !res.CertificationDate.Equal(submittedAt) {
		t.Fatalf("certification date: want=%s got=%v", submittedAt, res.CertificationDate)
	}

	u, c, rows := f.reload(t)
	if !u.IsCertified || u.CertificationDate == nil || !u.CertificationDate.Equal(submittedAt) {
		t.Fatalf("user not certified: %+v", u)
	}
	if c.Completed != 2 || c.Total != 2 {
		t.Fatalf("pass must leave progress untouched, got %+v", c)
	}
	if len(rows) != 1 {
		t.Fatalf("attempt rows: want=1 got=%d", len(rows))
	}
	got := rows[0]
	if got.Score != 80 || got.CorrectAnswers != 12 || got.TotalQuestions != 15 || !got.Passed {
		t.Fatalf("attempt row: %+v", got)
	}
	if got.TimeTakenSeconds == nil || *got.TimeTakenSeconds != taken {
		t.Fatalf("time taken: %v", got.TimeTakenSeconds)
	}
	if len(got.DetailedResults) != len(details) {
		t.Fatalf("detailed results len: want=%d got=%d", len(details), len(got.DetailedResults))
	}
	for i := range details {
		if got.DetailedResults[i] != details[i] {
			t.Fatalf("detailed result %d: want=%+v got=%+v", i, details[i], got.DetailedResults[i])
		}
	}
	if st := hooks.StatusesFor("Quiz.Certification.RecordAttempt"); len(st) != 1 || st[0] != "success" {
		t.Fatalf("hook statuses: %v", st)
	}
}

func TestCertificationRecordAttemptFailResetsEverything(t *testing.T) {
	f := newCertFixture(t)
	agg := f.aggregate(aggregates.BaseDeps{})
	ctx := context.Background()

	if _, err := agg.RecordAttempt(ctx, domainagg.RecordAttemptInput{
		UserID: f.user.ID, Score: 100, CorrectCount: 15, TotalQuestions: 15, Passed: true,
	}); err != nil {
		t.Fatalf("passing attempt: %v", err)
	}

	res, err := agg.RecordAttempt(ctx, domainagg.RecordAttemptInput{
		UserID: f.user.ID, Score: 73.33, CorrectCount: 11, TotalQuestions: 15, Passed: false,
		DetailedResults: sampleDetails(),
	})
	if err != nil {
		t.Fatalf("failing attempt: %v", err)
	}
	if res.AttemptNumber != 2 || res.Passed || !res.ProgressReset || res.ModulesReset != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.CertificationDate != nil {
		t.Fatalf("failed attempt must not carry a certification date")
	}

	u, c, rows := f.reload(t)
	if u.IsCertified || u.CertificationDate != nil {
		t.Fatalf("certification not cleared: %+v", u)
	}
	if c.Completed != 0 || c.Total != 2 {
		t.Fatalf("progress not reset: %+v", c)
	}
	if len(rows) != 2 || rows[0].AttemptNumber != 2 || rows[0].Score != 73.33 {
		t.Fatalf("ledger: %+v", rows)
	}
}

func TestCertificationRepeatedFailureAlwaysResets(t *testing.T) {
	f := newCertFixture(t)
	agg := f.aggregate(aggregates.BaseDeps{})
	ctx := context.Background()
	in := domainagg.RecordAttemptInput{UserID: f.user.ID, Score: 40, CorrectCount: 6, TotalQuestions: 15, Passed: false}

	for i := 1; i <= 2; i++ {
		if i > 1 {
			f.completeAll(t)
		}
		res, err := agg.RecordAttempt(ctx, in)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if res.AttemptNumber != i || !res.ProgressReset || res.ModulesReset != 2 {
			t.Fatalf("attempt %d: %+v", i, res)
		}
		u, c, _ := f.reload(t)
		if u.IsCertified || c.Completed != 0 {
			t.Fatalf("attempt %d left mixed standing: certified=%v completed=%d", i, u.IsCertified, c.Completed)
		}
	}
}

func TestCertificationAttemptNumbersGapFreeUnderConcurrency(t *testing.T) {
	assertGapFreeUnderConcurrency(t, newCertFixture(t))
}

// On Postgres the submissions really overlap, so only the user row lock keeps the
// max+1 numbering from colliding.
func TestCertificationAttemptNumbersGapFreeOnPostgres(t *testing.T) {
	assertGapFreeUnderConcurrency(t, newCertFixtureOn(t, repotest.PostgresDB(t)))
}

func TestCertificationWaitsForUserLockOnPostgres(t *testing.T) {
	f := newCertFixtureOn(t, repotest.PostgresDB(t))
	agg := f.aggregate(aggregates.BaseDeps{})
	ctx := context.Background()

	holder := f.db.Begin()
	if holder.Error != nil {
		t.Fatalf("begin: %v", holder.Error)
	}
	defer holder.Rollback()
	if _, err := f.users.LockByID(dbctx.Context{Ctx: ctx, Tx: holder}, f.user.ID); err != nil {
		t.Fatalf("lock user: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := agg.RecordAttempt(ctx, domainagg.RecordAttemptInput{
			UserID: f.user.ID, Score: 100, CorrectCount: 15, TotalQuestions: 15, Passed: true,
		})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("attempt finished while the user row was locked: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
	if err := holder.Commit().Error; err != nil {
		t.Fatalf("release lock: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("attempt after lock release: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("attempt never resumed after lock release")
	}
}

func assertGapFreeUnderConcurrency(t *testing.T, f *certFixture) {
	t.Helper()
	agg := f.aggregate(aggregates.BaseDeps{})

	const n = 12
	var wg sync.WaitGroup
	numbers := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := agg.RecordAttempt(context.Background(), domainagg.RecordAttemptInput{
				UserID:         f.user.ID,
				Score:          float64(i%2) * 100,
				CorrectCount:   (i % 2) * 15,
				TotalQuestions: 15,
				Passed:         i%2 == 1,
			})
			numbers[i] = res.AttemptNumber
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	sort.Ints(numbers)
	for i, got := range numbers {
		if got != i+1 {
			t.Fatalf("attempt numbers not gap-free: %v", numbers)
		}
	}

	u, c, rows := f.reload(t)
	if len(rows) != n {
		t.Fatalf("ledger rows: want=%d got=%d", n, len(rows))
	}
	last := rows[0]
	if last.Passed != u.IsCertified {
		t.Fatalf("standing disagrees with latest attempt: passed=%v certified=%v", last.Passed, u.IsCertified)
	}
	if !u.IsCertified && c.Completed != 0 {
		t.Fatalf("uncertified user kept completed modules: %+v", c)
	}
}

func TestCertificationRollbackLeavesStateIntact(t *testing.T) {
	cases := []struct {
		name     string
		runner   func(db *gorm.DB) *aggtest.InjectedTxRunner
		wantCode domainagg.ErrorCode
	}{
		{
			name: "body fails after writes",
			runner: func(db *gorm.DB) *aggtest.InjectedTxRunner {
				return &aggtest.InjectedTxRunner{DB: db, FailAfterBody: errors.New("connection reset")}
			},
			wantCode: domainagg.CodeInternal,
		},
		{
			name: "commit deadline",
			runner: func(db *gorm.DB) *aggtest.InjectedTxRunner {
				return &aggtest.InjectedTxRunner{DB: db, FailCommit: context.DeadlineExceeded}
			},
			wantCode: domainagg.CodeRetryable,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCertFixture(t)
			ctx := context.Background()
			certifiedAt := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
			if err := f.users.SetCertification(dbctx.Context{Ctx: ctx}, f.user.ID, true, &certifiedAt); err != nil {
				t.Fatalf("seed certification: %v", err)
			}

			runner := tc.runner(f.db)
			agg := f.aggregate(aggregates.BaseDeps{Runner: runner})
			_, err := agg.RecordAttempt(ctx, domainagg.RecordAttemptInput{
				UserID: f.user.ID, Score: 20, CorrectCount: 3, TotalQuestions: 15, Passed: false,
			})
			if !domainagg.IsCode(err, tc.wantCode) {
				t.Fatalf("want code %s, got %v", tc.wantCode, err)
			}
			if _, commits, rollbacks := runner.Counts(); commits != 0 || rollbacks != 1 {
				t.Fatalf("runner counters commit=%d rollback=%d", commits, rollbacks)
			}

			u, c, rows := f.reload(t)
			if !u.IsCertified || u.CertificationDate == nil || !u.CertificationDate.Equal(certifiedAt) {
				t.Fatalf("certification changed after rollback: %+v", u)
			}
			if c.Completed != 2 {
				t.Fatalf("progress changed after rollback: %+v", c)
			}
			if len(rows) != 0 {
				t.Fatalf("orphaned attempt rows after rollback: %d", len(rows))
			}

			res, err := f.aggregate(aggregates.BaseDeps{}).RecordAttempt(ctx, domainagg.RecordAttemptInput{
				UserID: f.user.ID, Score: 100, CorrectCount: 15, TotalQuestions: 15, Passed: true,
			})
			if err != nil {
				t.Fatalf("retry: %v", err)
			}
			if res.AttemptNumber != 1 {
				t.Fatalf("rolled back attempt consumed a number: got=%d", res.AttemptNumber)
			}
		})
	}
}

func TestCertificationRecordAttemptValidation(t *testing.T) {
	f := newCertFixture(t)
	agg := f.aggregate(aggregates.BaseDeps{})
	ctx := context.Background()

	cases := []struct {
		name string
		in   domainagg.RecordAttemptInput
		want domainagg.ErrorCode
	}{
		{"missing user", domainagg.RecordAttemptInput{TotalQuestions: 1}, domainagg.CodeValidation},
		{"no questions", domainagg.RecordAttemptInput{UserID: f.user.ID}, domainagg.CodeValidation},
		{"too many correct", domainagg.RecordAttemptInput{UserID: f.user.ID, TotalQuestions: 2, CorrectCount: 3}, domainagg.CodeValidation},
		{"score out of range", domainagg.RecordAttemptInput{UserID: f.user.ID, TotalQuestions: 2, Score: 101}, domainagg.CodeValidation},
		{"unknown user", domainagg.RecordAttemptInput{UserID: uuid.New(), TotalQuestions: 2}, domainagg.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := agg.RecordAttempt(ctx, tc.in); !domainagg.IsCode(err, tc.want) {
				t.Fatalf("want %s, got %v", tc.want, err)
			}
		})
	}
	if _, _, rows := f.reload(t); len(rows) != 0 {
		t.Fatalf("rejected input wrote %d attempts", len(rows))
	}
}

func TestCertificationResetStanding(t *testing.T) {
	f := newCertFixture(t)
	agg := f.aggregate(aggregates.BaseDeps{})
	ctx := context.Background()

	if _, err := agg.RecordAttempt(ctx, domainagg.RecordAttemptInput{
		UserID: f.user.ID, Score: 93.33, CorrectCount: 14, TotalQuestions: 15, Passed: true,
	}); err != nil {
		t.Fatalf("passing attempt: %v", err)
	}

	res, err := agg.ResetStanding(ctx, domainagg.ResetStandingInput{UserID: f.user.ID, Reason: "policy refresh"})
	if err != nil {
		t.Fatalf("ResetStanding: %v", err)
	}
	if !res.WasCertified || res.ModulesReset != 2 {
		t.Fatalf("unexpected reset result: %+v", res)
	}
	u, c, rows := f.reload(t)
	if u.IsCertified || c.Completed != 0 {
		t.Fatalf("reset left standing: certified=%v completed=%d", u.IsCertified, c.Completed)
	}
	if len(rows) != 1 {
		t.Fatalf("reset must not write attempts, rows=%d", len(rows))
	}

	again, err := agg.ResetStanding(ctx, domainagg.ResetStandingInput{UserID: f.user.ID})
	if err != nil {
		t.Fatalf("second ResetStanding: %v", err)
	}
	if again.WasCertified {
		t.Fatalf("second reset should see uncertified user")
	}

	if _, err := agg.ResetStanding(ctx, domainagg.ResetStandingInput{UserID: uuid.New()}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown user: want not_found got %v", err)
	}
}

func TestCertificationContract(t *testing.T) {
	agg := aggregates.NewCertificationAggregate(aggregates.CertificationAggregateDeps{})
	if !agg.Contract().RequiresAggregateOwnedTx() {
		t.Fatalf("certification writes must own their transaction")
	}
}
