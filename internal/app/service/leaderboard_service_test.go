package service

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"codemaster/internal/domain/model"
	"codemaster/internal/platform/config"
)

func seedSubmission(t *testing.T, repo *fakeSubmissionRepo, challengeID, userID string, score int) {
	t.Helper()
	err := repo.Upsert(context.Background(), &model.Submission{
		ID:          challengeID + "-" + userID,
		ChallengeID: challengeID,
		UserID:      userID,
		Status:      model.SubmissionPassed,
		Score:       score,
	})
	if err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}
}

func TestRecordScoreWritesAbsoluteTotal(t *testing.T) {
	setTestConfig(t)
	rdb := newTestRedis(t)
	subs := newFakeSubmissionRepo()
	svc := NewLeaderboardService(rdb, subs, newFakeUserRepo(), testLogger())

	seedSubmission(t, subs, "ch-1", "user-1", 80)
	seedSubmission(t, subs, "ch-2", "user-1", 100)

	if err := svc.RecordScore(context.Background(), "user-1"); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}
	score, err := rdb.ZScore(context.Background(), config.AppConfig.LeaderboardKey, "user-1").Result()
	if err != nil {
		t.Fatalf("ZScore failed: %v", err)
	}
	if score != 180 {
		t.Fatalf("expected absolute total 180, got %v", score)
	}

	// A resubmission that lowers the score must lower the cached total too.
	seedSubmission(t, subs, "ch-2", "user-1", 0)
	if err := svc.RecordScore(context.Background(), "user-1"); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}
	score, _ = rdb.ZScore(context.Background(), config.AppConfig.LeaderboardKey, "user-1").Result()
	if score != 80 {
		t.Fatalf("expected lowered total 80, got %v", score)
	}
}

func TestTopOrdersByScoreDescending(t *testing.T) {
	setTestConfig(t)
	rdb := newTestRedis(t)
	subs := newFakeSubmissionRepo()
	users := newFakeUserRepo()
	users.users["user-1"] = &model.User{ID: "user-1", Username: "alice"}
	users.users["user-2"] = &model.User{ID: "user-2", Username: "bob"}
	svc := NewLeaderboardService(rdb, subs, users, testLogger())

	seedSubmission(t, subs, "ch-1", "user-1", 50)
	seedSubmission(t, subs, "ch-1", "user-2", 100)
	for _, userID := range []string{"user-1", "user-2"} {
		if err := svc.RecordScore(context.Background(), userID); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}
	}

	entries, err := svc.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "bob" || entries[0].TotalScore != 100 || entries[0].Rank != 1 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Username != "alice" || entries[1].TotalScore != 50 || entries[1].Rank != 2 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestTopRebuildsEmptyCacheFromDatabase(t *testing.T) {
	setTestConfig(t)
	rdb := newTestRedis(t)
	subs := newFakeSubmissionRepo()
	svc := NewLeaderboardService(rdb, subs, newFakeUserRepo(), testLogger())

	seedSubmission(t, subs, "ch-1", "user-1", 75)

	entries, err := svc.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "user-1" || entries[0].TotalScore != 75 {
		t.Fatalf("unexpected rebuilt entries: %+v", entries)
	}

	// The rebuild should have warmed the sorted set.
	score, err := rdb.ZScore(context.Background(), config.AppConfig.LeaderboardKey, "user-1").Result()
	if err != nil {
		t.Fatalf("cache was not warmed: %v", err)
	}
	if score != 75 {
		t.Fatalf("expected warmed score 75, got %v", score)
	}
}

func TestTopFallsBackToDatabaseWhenRedisFails(t *testing.T) {
	setTestConfig(t)
	subs := newFakeSubmissionRepo()
	seedSubmission(t, subs, "ch-1", "user-1", 60)

	// Point the client at nothing so every command errors.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	svc := NewLeaderboardService(rdb, subs, newFakeUserRepo(), testLogger())

	entries, err := svc.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("Top must fall back to the database: %v", err)
	}
	if len(entries) != 1 || entries[0].TotalScore != 60 {
		t.Fatalf("unexpected fallback entries: %+v", entries)
	}
}
