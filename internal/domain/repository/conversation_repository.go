package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codemaster/internal/common"
	"codemaster/internal/domain/model"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Conversation, error)
	// UpdateMessages replaces the stored message array wholesale.
	UpdateMessages(ctx context.Context, id string, messages []model.ChatMessage) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Conversation, error)
}

type pgConversationRepository struct {
	db *sql.DB
}

func NewPgConversationRepository(db *sql.DB) ConversationRepository {
	return &pgConversationRepository{db: db}
}

func (r *pgConversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	payload, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("pgConversationRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO ai_conversations (id, user_id, title, messages)
	          VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, conv.ID, conv.UserID, conv.Title, payload); err != nil {
		return fmt.Errorf("pgConversationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgConversationRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at
	          FROM ai_conversations WHERE id = $1 AND user_id = $2`
	conv := &model.Conversation{}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&conv.ID, &conv.UserID, &conv.Title, &payload, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgConversationRepository.FindByIDAndUser: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &conv.Messages); err != nil {
			return nil, fmt.Errorf("pgConversationRepository.FindByIDAndUser unmarshal: %w", err)
		}
	}
	return conv, nil
}

func (r *pgConversationRepository) UpdateMessages(ctx context.Context, id string, messages []model.ChatMessage) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("pgConversationRepository.UpdateMessages marshal: %w", err)
	}
	query := `UPDATE ai_conversations SET messages = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, payload, id)
	if err != nil {
		return fmt.Errorf("pgConversationRepository.UpdateMessages: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgConversationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Conversation, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at
	          FROM ai_conversations WHERE user_id = $1
	          ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgConversationRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		var conv model.Conversation
		var payload []byte
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &payload, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgConversationRepository.ListByUser scan: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &conv.Messages); err != nil {
				return nil, fmt.Errorf("pgConversationRepository.ListByUser unmarshal: %w", err)
			}
		}
		conversations = append(conversations, conv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgConversationRepository.ListByUser rows.Err: %w", err)
	}
	return conversations, nil
}
