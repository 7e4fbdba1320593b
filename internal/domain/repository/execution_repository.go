package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codemaster/internal/domain/model"
)

type ExecutionRepository interface {
	Insert(ctx context.Context, exec *model.CodeExecution) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.CodeExecution, error)
}

type pgExecutionRepository struct {
	db *sql.DB
}

func NewPgExecutionRepository(db *sql.DB) ExecutionRepository {
	return &pgExecutionRepository{db: db}
}

func (r *pgExecutionRepository) Insert(ctx context.Context, exec *model.CodeExecution) error {
	query := `INSERT INTO code_executions (id, user_id, code, language, input_data, output, error_message, execution_time_ms, memory_used_kb, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		exec.ID, exec.UserID, exec.Code, exec.Language, exec.InputData,
		exec.Output, exec.ErrorMessage, exec.ExecutionTimeMs, exec.MemoryUsedKb, exec.Status)
	if err != nil {
		return fmt.Errorf("pgExecutionRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgExecutionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.CodeExecution, error) {
	query := `SELECT id, user_id, code, language, input_data, output, error_message, execution_time_ms, memory_used_kb, status, created_at
	          FROM code_executions WHERE user_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgExecutionRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	executions := []model.CodeExecution{}
	for rows.Next() {
		var e model.CodeExecution
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Code, &e.Language, &e.InputData,
			&e.Output, &e.ErrorMessage, &e.ExecutionTimeMs, &e.MemoryUsedKb, &e.Status, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgExecutionRepository.ListByUser scan: %w", err)
		}
		executions = append(executions, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgExecutionRepository.ListByUser rows.Err: %w", err)
	}
	return executions, nil
}
