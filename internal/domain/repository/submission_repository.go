package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codemaster/internal/common"
	"codemaster/internal/domain/model"
)

type SubmissionRepository interface {
	// Upsert writes the verdict for a (challenge, user) pair, replacing any
	// prior record. Idempotent per pair; last write wins.
	Upsert(ctx context.Context, sub *model.Submission) error
	FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error)
	TotalScoreByUser(ctx context.Context, userID string) (int, error)
	LeaderboardTotals(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Upsert(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO challenge_submissions (id, challenge_id, user_id, code, language, status, score, test_results, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
	          ON CONFLICT (challenge_id, user_id) DO UPDATE SET
	            code = EXCLUDED.code,
	            language = EXCLUDED.language,
	            status = EXCLUDED.status,
	            score = EXCLUDED.score,
	            test_results = EXCLUDED.test_results,
	            submitted_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.ChallengeID, sub.UserID, sub.Code, sub.Language,
		sub.Status, sub.Score, sub.TestResults)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByChallengeAndUser(ctx context.Context, challengeID, userID string) (*model.Submission, error) {
	query := `SELECT id, challenge_id, user_id, code, language, status, score, test_results, submitted_at
	          FROM challenge_submissions WHERE challenge_id = $1 AND user_id = $2`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, challengeID, userID).Scan(
		&sub.ID, &sub.ChallengeID, &sub.UserID, &sub.Code, &sub.Language,
		&sub.Status, &sub.Score, &sub.TestResults, &sub.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByChallengeAndUser: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	query := `SELECT s.id, s.challenge_id, s.user_id, s.code, s.language, s.status, s.score, s.test_results, s.submitted_at,
	                 c.title
	          FROM challenge_submissions s
	          JOIN code_challenges c ON s.challenge_id = c.id
	          WHERE s.user_id = $1
	          ORDER BY s.submitted_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(
			&sub.ID, &sub.ChallengeID, &sub.UserID, &sub.Code, &sub.Language,
			&sub.Status, &sub.Score, &sub.TestResults, &sub.SubmittedAt,
			&sub.ChallengeTitle,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUser scan: %w", err)
		}
		submissions = append(submissions, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) TotalScoreByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COALESCE(SUM(score), 0) FROM challenge_submissions WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.TotalScoreByUser: %w", err)
	}
	return total, nil
}

func (r *pgSubmissionRepository) LeaderboardTotals(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT s.user_id, u.username, COALESCE(SUM(s.score), 0) AS total_score
	          FROM challenge_submissions s
	          JOIN users u ON s.user_id = u.id
	          GROUP BY s.user_id, u.username
	          ORDER BY total_score DESC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.LeaderboardTotals query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalScore); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.LeaderboardTotals scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.LeaderboardTotals rows.Err: %w", err)
	}
	return entries, nil
}
