package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"codemaster/internal/app/simulator"
	"codemaster/internal/common"
	"codemaster/internal/domain/model"

	"github.com/google/uuid"
)

func newChallengeFixture(points int, published bool) *model.Challenge {
	return &model.Challenge{
		ID:          uuid.NewString(),
		Title:       "Two Sum",
		Slug:        "two-sum",
		Description: "Return indices of the two numbers that add up to target.",
		Difficulty:  model.DifficultyEasy,
		Points:      points,
		IsPublished: published,
	}
}

func newChallengeService(t *testing.T, challengeRepo *fakeChallengeRepo, submissionRepo *fakeSubmissionRepo) *ChallengeService {
	t.Helper()
	setTestConfig(t)
	userRepo := newFakeUserRepo()
	leaderboard := NewLeaderboardService(newTestRedis(t), submissionRepo, userRepo, testLogger())
	return NewChallengeService(challengeRepo, submissionRepo, simulator.New(), leaderboard, testLogger())
}

func TestSubmitTwoSumEndToEnd(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	submissionRepo := newFakeSubmissionRepo()
	challenge := newChallengeFixture(100, true)
	challengeRepo.challenges[challenge.ID] = challenge

	svc := newChallengeService(t, challengeRepo, submissionRepo)

	sub, err := svc.Submit(context.Background(), "user-1", challenge.ID, SubmitSolutionRequest{
		Code:     "def two_sum(a,b):\n    return a+b",
		Language: "python",
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if sub.Status != model.SubmissionPassed {
		t.Fatalf("expected passed, got %q", sub.Status)
	}
	if sub.Score != 100 {
		t.Fatalf("expected full credit 100, got %d", sub.Score)
	}

	var snapshot simulator.Result
	if err := json.Unmarshal(sub.TestResults, &snapshot); err != nil {
		t.Fatalf("test results snapshot is not valid JSON: %v", err)
	}
	if snapshot.Output != "[0, 1]" {
		t.Fatalf("expected simulated two_sum output, got %q", snapshot.Output)
	}
	if snapshot.Status != simulator.StatusSuccess {
		t.Fatalf("expected success snapshot, got %q", snapshot.Status)
	}
}

func TestSubmitUpsertKeepsLatestVerdictOnly(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	submissionRepo := newFakeSubmissionRepo()
	challenge := newChallengeFixture(50, true)
	challengeRepo.challenges[challenge.ID] = challenge

	svc := newChallengeService(t, challengeRepo, submissionRepo)

	if _, err := svc.Submit(context.Background(), "user-1", challenge.ID, SubmitSolutionRequest{
		Code:     "def two_sum(a,b):\n    return a+b",
		Language: "python",
	}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// Second attempt trips the simulated syntax error and must replace the
	// passing record.
	if _, err := svc.Submit(context.Background(), "user-1", challenge.ID, SubmitSolutionRequest{
		Code:     "syntax_error here",
		Language: "python",
	}); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if len(submissionRepo.records) != 1 {
		t.Fatalf("expected exactly one record per pair, got %d", len(submissionRepo.records))
	}
	stored, err := submissionRepo.FindByChallengeAndUser(context.Background(), challenge.ID, "user-1")
	if err != nil {
		t.Fatalf("stored submission missing: %v", err)
	}
	if stored.Status != model.SubmissionFailed || stored.Score != 0 {
		t.Fatalf("expected latest verdict failed/0, got %q/%d", stored.Status, stored.Score)
	}
}

func TestSubmitRefreshesLeaderboard(t *testing.T) {
	setTestConfig(t)
	challengeRepo := newFakeChallengeRepo()
	submissionRepo := newFakeSubmissionRepo()
	first := newChallengeFixture(100, true)
	second := newChallengeFixture(50, true)
	second.Slug = "three-sum"
	challengeRepo.challenges[first.ID] = first
	challengeRepo.challenges[second.ID] = second

	rdb := newTestRedis(t)
	userRepo := newFakeUserRepo()
	leaderboard := NewLeaderboardService(rdb, submissionRepo, userRepo, testLogger())
	svc := NewChallengeService(challengeRepo, submissionRepo, simulator.New(), leaderboard, testLogger())

	code := "def two_sum(a,b):\n    return a+b"
	if _, err := svc.Submit(context.Background(), "user-1", first.ID, SubmitSolutionRequest{Code: code, Language: "python"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "user-1", second.ID, SubmitSolutionRequest{Code: code, Language: "python"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	score, err := rdb.ZScore(context.Background(), "leaderboard:scores", "user-1").Result()
	if err != nil {
		t.Fatalf("leaderboard member missing: %v", err)
	}
	if int(score) != 150 {
		t.Fatalf("expected total 150, got %d", int(score))
	}
}

func TestSubmitValidation(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	submissionRepo := newFakeSubmissionRepo()
	published := newChallengeFixture(100, true)
	draft := newChallengeFixture(100, false)
	draft.Slug = "draft"
	challengeRepo.challenges[published.ID] = published
	challengeRepo.challenges[draft.ID] = draft

	svc := newChallengeService(t, challengeRepo, submissionRepo)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "user-1", published.ID, SubmitSolutionRequest{Code: "  ", Language: "python"}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for blank code, got %v", err)
	}
	if _, err := svc.Submit(ctx, "user-1", published.ID, SubmitSolutionRequest{Code: "x = 1", Language: ""}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for missing language, got %v", err)
	}
	if _, err := svc.Submit(ctx, "user-1", "missing", SubmitSolutionRequest{Code: "x = 1", Language: "python"}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not found for unknown challenge, got %v", err)
	}
	if _, err := svc.Submit(ctx, "user-1", draft.ID, SubmitSolutionRequest{Code: "x = 1", Language: "python"}); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected forbidden for unpublished challenge, got %v", err)
	}
}

func TestSubmitSurfacesPersistenceFailure(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	submissionRepo := newFakeSubmissionRepo()
	submissionRepo.failWrite = true
	challenge := newChallengeFixture(100, true)
	challengeRepo.challenges[challenge.ID] = challenge

	svc := newChallengeService(t, challengeRepo, submissionRepo)

	_, err := svc.Submit(context.Background(), "user-1", challenge.ID, SubmitSolutionRequest{
		Code:     "x = 1",
		Language: "python",
	})
	if err == nil {
		t.Fatalf("expected error when the submission write fails")
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	svc := newChallengeService(t, challengeRepo, newFakeSubmissionRepo())
	ctx := context.Background()

	valid := CreateChallengeRequest{
		Title:       "FizzBuzz Sprint",
		Description: "Print fizz and buzz.",
		Difficulty:  "Easy",
		Points:      10,
		IsPublished: true,
	}

	created, err := svc.Create(ctx, "admin-1", valid)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if created.Slug != "fizzbuzz-sprint" {
		t.Fatalf("expected slug derived from title, got %q", created.Slug)
	}
	if created.Difficulty != model.DifficultyEasy {
		t.Fatalf("expected normalized difficulty, got %q", created.Difficulty)
	}

	bad := valid
	bad.Points = 0
	if _, err := svc.Create(ctx, "admin-1", bad); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for zero points, got %v", err)
	}

	bad = valid
	bad.Difficulty = "impossible"
	if _, err := svc.Create(ctx, "admin-1", bad); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for unknown difficulty, got %v", err)
	}
}
