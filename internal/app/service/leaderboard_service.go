package service

import (
	"context"
	"fmt"

	"codemaster/internal/domain/model"
	"codemaster/internal/domain/repository"
	"codemaster/internal/platform/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LeaderboardService keeps a Redis sorted set of total scores, refreshed on
// every graded submission and rebuilt from Postgres when empty.
type LeaderboardService struct {
	rdb            *redis.Client
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	logger         *zap.Logger
}

func NewLeaderboardService(
	rdb *redis.Client,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		rdb:            rdb,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// RecordScore recomputes the user's total from the latest-attempt rows and
// writes it into the sorted set. Totals are absolute, not incremental, so
// upserted resubmissions that lower a score stay correct.
func (s *LeaderboardService) RecordScore(ctx context.Context, userID string) error {
	total, err := s.submissionRepo.TotalScoreByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute total score: %w", err)
	}
	member := redis.Z{Score: float64(total), Member: userID}
	if err := s.rdb.ZAdd(ctx, config.AppConfig.LeaderboardKey, member).Err(); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > config.AppConfig.LeaderboardSize {
		limit = config.AppConfig.LeaderboardSize
	}

	zs, err := s.rdb.ZRevRangeWithScores(ctx, config.AppConfig.LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		s.logger.Warn("leaderboard read from redis failed, falling back to database", zap.Error(err))
		return s.submissionRepo.LeaderboardTotals(ctx, limit)
	}
	if len(zs) == 0 {
		return s.rebuild(ctx, limit)
	}

	entries := make([]model.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		userID, ok := z.Member.(string)
		if !ok {
			continue
		}
		username := userID
		if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
			username = user.Username
		}
		entries = append(entries, model.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     userID,
			Username:   username,
			TotalScore: int(z.Score),
		})
	}
	return entries, nil
}

func (s *LeaderboardService) rebuild(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	entries, err := s.submissionRepo.LeaderboardTotals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: float64(e.TotalScore), Member: e.UserID})
	}
	if err := s.rdb.ZAdd(ctx, config.AppConfig.LeaderboardKey, members...).Err(); err != nil {
		s.logger.Warn("failed to warm leaderboard cache", zap.Error(err))
	}
	return entries, nil
}
