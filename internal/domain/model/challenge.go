package model

import "time"

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge is a scored coding exercise. Authored by admins, read-only from
// the grading perspective. Points must be positive.
type Challenge struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description"`
	Difficulty   ChallengeDifficulty `json:"difficulty"`
	Language     *string             `json:"language,omitempty"`
	Category     *string             `json:"category,omitempty"`
	StarterCode  *string             `json:"starter_code,omitempty"`
	SolutionCode *string             `json:"solution_code,omitempty"` // Admin only view
	Points       int                 `json:"points"`
	IsPublished  bool                `json:"is_published"`
	CreatedByID  *string             `json:"created_by_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
