package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codemaster/internal/common"
	"codemaster/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	Update(ctx context.Context, challenge *model.Challenge) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	FindBySlug(ctx context.Context, slug string) (*model.Challenge, error)
	List(ctx context.Context, limit, offset int, difficulty model.ChallengeDifficulty, category string, publishedOnly bool) ([]model.Challenge, int, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

const challengeColumns = `id, title, slug, description, difficulty, language, category,
	starter_code, solution_code, points, is_published, created_by, created_at, updated_at`

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO code_challenges (id, title, slug, description, difficulty, language, category, starter_code, solution_code, points, is_published, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Slug, c.Description, c.Difficulty, c.Language, c.Category,
		c.StarterCode, c.SolutionCode, c.Points, c.IsPublished, c.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("challenge with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) Update(ctx context.Context, c *model.Challenge) error {
	query := `UPDATE code_challenges SET
	            title = $1, slug = $2, description = $3, difficulty = $4, language = $5,
	            category = $6, starter_code = $7, solution_code = $8, points = $9,
	            is_published = $10, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query,
		c.Title, c.Slug, c.Description, c.Difficulty, c.Language,
		c.Category, c.StarterCode, c.SolutionCode, c.Points,
		c.IsPublished, c.ID)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	return r.findOne(ctx, "id", id)
}

func (r *pgChallengeRepository) FindBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *pgChallengeRepository) findOne(ctx context.Context, column, value string) (*model.Challenge, error) {
	query := fmt.Sprintf(`SELECT %s FROM code_challenges WHERE %s = $1`, challengeColumns, column)
	c := &model.Challenge{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.Difficulty, &c.Language, &c.Category,
		&c.StarterCode, &c.SolutionCode, &c.Points, &c.IsPublished, &c.CreatedByID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.findOne(%s): %w", column, err)
	}
	return c, nil
}

func (r *pgChallengeRepository) List(ctx context.Context, limit, offset int, difficulty model.ChallengeDifficulty, category string, publishedOnly bool) ([]model.Challenge, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if publishedOnly {
		conditions = append(conditions, "is_published = TRUE")
	}
	if difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argID))
		args = append(args, difficulty)
		argID++
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, category)
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM code_challenges" + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM code_challenges%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		challengeColumns, whereClause, argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.Description, &c.Difficulty, &c.Language, &c.Category,
			&c.StarterCode, &c.SolutionCode, &c.Points, &c.IsPublished, &c.CreatedByID,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgChallengeRepository.List rows.Err: %w", err)
	}

	return challenges, total, nil
}
