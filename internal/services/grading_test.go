package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"codecrackers/internal/models"
	"codecrackers/internal/services"
)

type fakeContestRepo struct {
	active bool
	reads  int
}

func (f *fakeContestRepo) IsContestActive(ctx context.Context) (bool, error) {
	f.reads++
	return f.active, nil
}

func (f *fakeContestRepo) SetContestActive(ctx context.Context, active bool) error {
	f.active = active
	return nil
}

type fakeProblemRepo struct {
	cases map[int][]models.TestCase
}

func (f *fakeProblemRepo) GetProblems(ctx context.Context) ([]models.ProblemListItem, error) {
	return nil, nil
}

func (f *fakeProblemRepo) GetProblemByID(ctx context.Context, problemID int) (*models.ProblemDetail, error) {
	if _, ok := f.cases[problemID]; !ok {
		return nil, models.ErrProblemNotFound
	}
	return &models.ProblemDetail{ID: problemID}, nil
}

func (f *fakeProblemRepo) GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	cases, ok := f.cases[problemID]
	if !ok {
		return nil, models.ErrProblemNotFound
	}
	return cases, nil
}

type fakeSubmissionRepo struct {
	mu      sync.Mutex
	records []models.Submission
}

func (f *fakeSubmissionRepo) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *submission)
	return nil
}

func (f *fakeSubmissionRepo) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, models.ErrSubmissionNotFound
}

func (f *fakeSubmissionRepo) GetSubmissionsByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeUserRepo mirrors the ledger semantics: first solve per
// (user, problem) awards points, repeats are no-ops, scores never drop.
type fakeUserRepo struct {
	mu     sync.Mutex
	solved map[[2]int]bool
	score  map[int]int
	count  map[int]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		solved: make(map[[2]int]bool),
		score:  make(map[int]int),
		count:  make(map[int]int),
	}
}

func (f *fakeUserRepo) AwardFirstSolve(ctx context.Context, userID, problemID, points int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{userID, problemID}
	if f.solved[key] {
		return false, nil
	}
	f.solved[key] = true
	f.score[userID] += points
	f.count[userID]++
	return true, nil
}

func (f *fakeUserRepo) GetLeaderboard(ctx context.Context, limit int) ([]models.UserStats, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetAllUserStats(ctx context.Context) ([]models.UserStats, error) {
	return nil, nil
}

func (f *fakeUserRepo) SetBanned(ctx context.Context, userID int, banned bool) error {
	return nil
}

func (f *fakeUserRepo) stats(userID int) (score, solved int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.score[userID], f.count[userID]
}

type gradingDeps struct {
	contest     *fakeContestRepo
	problems    *fakeProblemRepo
	submissions *fakeSubmissionRepo
	users       *fakeUserRepo
	grading     *services.GradingService
}

func newGradingDeps(executor services.ExecutionClient, cases map[int][]models.TestCase) *gradingDeps {
	deps := &gradingDeps{
		contest:     &fakeContestRepo{active: true},
		problems:    &fakeProblemRepo{cases: cases},
		submissions: &fakeSubmissionRepo{},
		users:       newFakeUserRepo(),
	}
	deps.grading = services.NewGradingService(
		deps.contest,
		deps.problems,
		deps.submissions,
		deps.users,
		services.NewJudgeService(executor),
		100,
	)
	return deps
}

func passingCases(n int) []models.TestCase {
	cases := make([]models.TestCase, n)
	for i := range cases {
		cases[i] = models.TestCase{Input: "in", ExpectedOutput: "ok"}
	}
	return cases
}

// passExecutor answers "ok" forever so any number of cases pass. Safe for
// concurrent use.
type passExecutor struct{}

func (passExecutor) Execute(ctx context.Context, languageID int, sourceCode, stdin string) (*services.ExecutionOutput, error) {
	return &services.ExecutionOutput{Stdout: "ok\n"}, nil
}

func TestGradeAcceptedCreatesOneRecordAndAwards(t *testing.T) {
	deps := newGradingDeps(&scriptedExecutor{steps: []executorStep{
		{output: services.ExecutionOutput{Stdout: "ok"}},
		{output: services.ExecutionOutput{Stdout: "ok"}},
	}}, map[int][]models.TestCase{7: passingCases(2)})

	submission, err := deps.grading.Grade(context.Background(), services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if submission.Verdict != models.VerdictAccepted {
		t.Fatalf("unexpected verdict: %s", submission.Verdict)
	}
	if deps.submissions.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", deps.submissions.count())
	}
	score, solved := deps.users.stats(1)
	if score != 100 || solved != 1 {
		t.Fatalf("expected +100/+1, got score=%d solved=%d", score, solved)
	}
}

func TestGradeWrongAnswerRecordsButNeverAwards(t *testing.T) {
	deps := newGradingDeps(&scriptedExecutor{steps: []executorStep{
		{output: services.ExecutionOutput{Stdout: "wrong"}},
	}}, map[int][]models.TestCase{7: passingCases(3)})

	submission, err := deps.grading.Grade(context.Background(), services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if submission.Verdict != models.VerdictWrongAnswer {
		t.Fatalf("unexpected verdict: %s", submission.Verdict)
	}
	if submission.FailedCase == nil || *submission.FailedCase != 1 {
		t.Fatalf("expected failed case 1, got %v", submission.FailedCase)
	}
	if deps.submissions.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", deps.submissions.count())
	}
	if score, solved := deps.users.stats(1); score != 0 || solved != 0 {
		t.Fatalf("wrong answer must not award, got score=%d solved=%d", score, solved)
	}
}

func TestGradeFrozenContestHasNoSideEffects(t *testing.T) {
	executor := &scriptedExecutor{}
	deps := newGradingDeps(executor, map[int][]models.TestCase{7: passingCases(1)})
	deps.contest.active = false

	_, err := deps.grading.Grade(context.Background(), services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
	})
	if !errors.Is(err, models.ErrContestFrozen) {
		t.Fatalf("expected ErrContestFrozen, got %v", err)
	}
	if len(executor.stdins) != 0 {
		t.Fatalf("frozen contest must not reach the sandbox")
	}
	if deps.submissions.count() != 0 {
		t.Fatalf("frozen contest must not create records")
	}
	if score, solved := deps.users.stats(1); score != 0 || solved != 0 {
		t.Fatalf("frozen contest must not touch scores")
	}
}

func TestGradeProblemNotFound(t *testing.T) {
	deps := newGradingDeps(&scriptedExecutor{}, map[int][]models.TestCase{})

	_, err := deps.grading.Grade(context.Background(), services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 404, LanguageID: pythonID, SourceCode: "code",
	})
	if !errors.Is(err, models.ErrProblemNotFound) {
		t.Fatalf("expected ErrProblemNotFound, got %v", err)
	}
	if deps.submissions.count() != 0 {
		t.Fatalf("missing problem must not create records")
	}
}

func TestGradeInfrastructureFailureLeavesNoRecord(t *testing.T) {
	deps := newGradingDeps(&scriptedExecutor{steps: []executorStep{
		{err: models.ErrExecutionFailed},
	}}, map[int][]models.TestCase{7: passingCases(2)})

	_, err := deps.grading.Grade(context.Background(), services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
	})
	if !errors.Is(err, models.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
	if deps.submissions.count() != 0 {
		t.Fatalf("infrastructure failures must never be persisted as submissions")
	}
}

func TestGradeRepeatAcceptedAwardsOnce(t *testing.T) {
	deps := newGradingDeps(passExecutor{}, map[int][]models.TestCase{7: passingCases(1)})

	for i, id := range []string{"sub-1", "sub-2"} {
		_, err := deps.grading.Grade(context.Background(), services.GradeRequest{
			SubmissionID: id, UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
		})
		if err != nil {
			t.Fatalf("grade %d: expected success, got error: %v", i+1, err)
		}
	}

	if deps.submissions.count() != 2 {
		t.Fatalf("every attempt gets a record, got %d", deps.submissions.count())
	}
	score, solved := deps.users.stats(1)
	if score != 100 || solved != 1 {
		t.Fatalf("repeat solve must not re-award, got score=%d solved=%d", score, solved)
	}
}

func TestGradeCanceledCallerDiscardsResult(t *testing.T) {
	deps := newGradingDeps(passExecutor{}, map[int][]models.TestCase{7: passingCases(1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := deps.grading.Grade(ctx, services.GradeRequest{
		SubmissionID: "sub-1", UserID: 1, ProblemID: 7, LanguageID: pythonID, SourceCode: "code",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if deps.submissions.count() != 0 {
		t.Fatalf("canceled grading must not persist a record")
	}
}

func TestGradeConcurrentAcceptedBothCount(t *testing.T) {
	deps := newGradingDeps(passExecutor{}, map[int][]models.TestCase{
		1: passingCases(1),
		2: passingCases(1),
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, problemID := range []int{1, 2} {
		wg.Add(1)
		go func(i, problemID int) {
			defer wg.Done()
			_, errs[i] = deps.grading.Grade(context.Background(), services.GradeRequest{
				SubmissionID: "sub-" + string(rune('a'+i)),
				UserID:       1,
				ProblemID:    problemID,
				LanguageID:   pythonID,
				SourceCode:   "code",
			})
		}(i, problemID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent grade %d failed: %v", i, err)
		}
	}
	if deps.submissions.count() != 2 {
		t.Fatalf("expected two records, got %d", deps.submissions.count())
	}
	score, solved := deps.users.stats(1)
	if score != 200 || solved != 2 {
		t.Fatalf("concurrent awards collapsed: score=%d solved=%d", score, solved)
	}
}
