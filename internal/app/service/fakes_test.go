package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codemaster/internal/common"
	"codemaster/internal/domain/model"
	"codemaster/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:          []byte("test-secret"),
		JWTExp:          time.Hour,
		LeaderboardKey:  "leaderboard:scores",
		LeaderboardSize: 50,
		ChatModel:       "gpt-4o-mini",
		ChatTimeout:     5 * time.Second,
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type fakeChallengeRepo struct {
	challenges map[string]*model.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: map[string]*model.Challenge{}}
}

func (r *fakeChallengeRepo) Create(ctx context.Context, c *model.Challenge) error {
	r.challenges[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) Update(ctx context.Context, c *model.Challenge) error {
	if _, ok := r.challenges[c.ID]; !ok {
		return common.ErrNotFound
	}
	r.challenges[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeChallengeRepo) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	for _, c := range r.challenges {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeChallengeRepo) List(ctx context.Context, limit, offset int, difficulty model.ChallengeDifficulty, category string, publishedOnly bool) ([]model.Challenge, int, error) {
	out := []model.Challenge{}
	for _, c := range r.challenges {
		if publishedOnly && !c.IsPublished {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

type submissionKey struct {
	challengeID string
	userID      string
}

type fakeSubmissionRepo struct {
	records   map[submissionKey]*model.Submission
	upserts   int
	failWrite bool
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{records: map[submissionKey]*model.Submission{}}
}

func (r *fakeSubmissionRepo) Upsert(ctx context.Context, sub *model.Submission) error {
	if r.failWrite {
		return errors.New("write refused")
	}
	r.upserts++
	copied := *sub
	copied.SubmittedAt = time.Now()
	r.records[submissionKey{sub.ChallengeID, sub.UserID}] = &copied
	return nil
}

func (r *fakeSubmissionRepo) FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Submission, error) {
	sub, ok := r.records[submissionKey{challengeID, userID}]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubmissionRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	out := []model.Submission{}
	for _, sub := range r.records {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) TotalScoreByUser(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, sub := range r.records {
		if sub.UserID == userID {
			total += sub.Score
		}
	}
	return total, nil
}

func (r *fakeSubmissionRepo) LeaderboardTotals(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	totals := map[string]int{}
	for _, sub := range r.records {
		totals[sub.UserID] += sub.Score
	}
	entries := []model.LeaderboardEntry{}
	for userID, total := range totals {
		entries = append(entries, model.LeaderboardEntry{
			Rank:       len(entries) + 1,
			UserID:     userID,
			Username:   userID,
			TotalScore: total,
		})
	}
	return entries, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type fakeExecutionRepo struct {
	inserted  []*model.CodeExecution
	failWrite bool
}

func (r *fakeExecutionRepo) Insert(ctx context.Context, exec *model.CodeExecution) error {
	if r.failWrite {
		return errors.New("write refused")
	}
	r.inserted = append(r.inserted, exec)
	return nil
}

func (r *fakeExecutionRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.CodeExecution, error) {
	out := []model.CodeExecution{}
	for _, e := range r.inserted {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	conversations map[string]*model.Conversation
	creates       int
	updates       int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: map[string]*model.Conversation{}}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	r.creates++
	copied := *conv
	r.conversations[conv.ID] = &copied
	return nil
}

func (r *fakeConversationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, common.ErrNotFound
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeConversationRepo) UpdateMessages(ctx context.Context, id string, messages []model.ChatMessage) error {
	conv, ok := r.conversations[id]
	if !ok {
		return common.ErrNotFound
	}
	r.updates++
	conv.Messages = messages
	return nil
}

func (r *fakeConversationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Conversation, error) {
	out := []model.Conversation{}
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
