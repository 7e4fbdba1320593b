package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codemaster/internal/app/grading"
	"codemaster/internal/app/simulator"
	"codemaster/internal/common"
	"codemaster/internal/domain/model"
	"codemaster/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ChallengeService struct {
	challengeRepo  repository.ChallengeRepository
	submissionRepo repository.SubmissionRepository
	sim            simulator.Simulator
	leaderboard    *LeaderboardService
	logger         *zap.Logger
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	submissionRepo repository.SubmissionRepository,
	sim simulator.Simulator,
	leaderboard *LeaderboardService,
	logger *zap.Logger,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo:  challengeRepo,
		submissionRepo: submissionRepo,
		sim:            sim,
		leaderboard:    leaderboard,
		logger:         logger,
	}
}

type CreateChallengeRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Difficulty   string  `json:"difficulty"`
	Language     *string `json:"language,omitempty"`
	Category     *string `json:"category,omitempty"`
	StarterCode  *string `json:"starter_code,omitempty"`
	SolutionCode *string `json:"solution_code,omitempty"`
	Points       int     `json:"points"`
	IsPublished  bool    `json:"is_published"`
}

func (s *ChallengeService) Create(ctx context.Context, creatorID string, req CreateChallengeRequest) (*model.Challenge, error) {
	if req.Title == "" || req.Description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if req.Points <= 0 {
		return nil, common.Errorf("points must be positive: %w", common.ErrValidation)
	}
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}

	challenge := &model.Challenge{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Difficulty:   difficulty,
		Language:     req.Language,
		Category:     req.Category,
		StarterCode:  req.StarterCode,
		SolutionCode: req.SolutionCode,
		Points:       req.Points,
		IsPublished:  req.IsPublished,
		CreatedByID:  &creatorID,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("challenge created",
		zap.String("challenge_id", challenge.ID),
		zap.String("slug", challenge.Slug))
	return challenge, nil
}

func (s *ChallengeService) Update(ctx context.Context, id string, req CreateChallengeRequest) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Points <= 0 {
		return nil, common.Errorf("points must be positive: %w", common.ErrValidation)
	}
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}

	challenge.Title = req.Title
	challenge.Slug = slug.Make(req.Title)
	challenge.Description = req.Description
	challenge.Difficulty = difficulty
	challenge.Language = req.Language
	challenge.Category = req.Category
	challenge.StarterCode = req.StarterCode
	challenge.SolutionCode = req.SolutionCode
	challenge.Points = req.Points
	challenge.IsPublished = req.IsPublished

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeService) Get(ctx context.Context, id string, includeSolution bool) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		challenge, err = s.challengeRepo.FindBySlug(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if !includeSolution {
		challenge.SolutionCode = nil
	}
	return challenge, nil
}

func (s *ChallengeService) List(ctx context.Context, limit, offset int, difficulty, category string, includeUnpublished bool) ([]model.Challenge, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	challenges, total, err := s.challengeRepo.List(ctx, limit, offset, model.ChallengeDifficulty(strings.ToLower(difficulty)), category, !includeUnpublished)
	if err != nil {
		return nil, 0, err
	}
	if !includeUnpublished {
		for i := range challenges {
			challenges[i].SolutionCode = nil
		}
	}
	return challenges, total, nil
}

type SubmitSolutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Submit simulates the submitted code, grades the result against the
// challenge's points, and upserts the verdict for the (challenge, user)
// pair. A resubmission replaces the prior record.
func (s *ChallengeService) Submit(ctx context.Context, userID, challengeID string, req SubmitSolutionRequest) (*model.Submission, error) {
	if strings.TrimSpace(req.Code) == "" || req.Language == "" {
		return nil, common.Errorf("code and language are required: %w", common.ErrValidation)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}
	if !challenge.IsPublished {
		return nil, common.Errorf("challenge is not published: %w", common.ErrForbidden)
	}

	result := s.sim.Execute(ctx, simulator.Request{Code: req.Code, Language: req.Language})
	verdict := grading.Grade(result, req.Code, challenge.Points)

	snapshot, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution snapshot: %w", err)
	}

	submission := &model.Submission{
		ID:          uuid.NewString(),
		ChallengeID: challenge.ID,
		UserID:      userID,
		Code:        req.Code,
		Language:    req.Language,
		Status:      verdict.Status,
		Score:       verdict.Score,
		TestResults: snapshot,
	}
	if err := s.submissionRepo.Upsert(ctx, submission); err != nil {
		return nil, common.Errorf("failed to record submission: %w", err)
	}

	if err := s.leaderboard.RecordScore(ctx, userID); err != nil {
		s.logger.Warn("failed to refresh leaderboard score",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	s.logger.Info("submission graded",
		zap.String("challenge_id", challenge.ID),
		zap.String("user_id", userID),
		zap.String("status", string(verdict.Status)),
		zap.Int("score", verdict.Score))
	return submission, nil
}

func (s *ChallengeService) SubmissionsForUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.submissionRepo.ListByUser(ctx, userID, limit, offset)
}

func parseDifficulty(raw string) (model.ChallengeDifficulty, error) {
	switch model.ChallengeDifficulty(strings.ToLower(raw)) {
	case model.DifficultyEasy:
		return model.DifficultyEasy, nil
	case model.DifficultyMedium:
		return model.DifficultyMedium, nil
	case model.DifficultyHard:
		return model.DifficultyHard, nil
	default:
		return "", common.Errorf("unknown difficulty %q: %w", raw, common.ErrValidation)
	}
}
