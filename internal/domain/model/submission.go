package model

import (
	"encoding/json"
	"time"
)

type SubmissionStatus string

const (
	SubmissionPassed SubmissionStatus = "passed"
	SubmissionFailed SubmissionStatus = "failed"
)

// Submission is a user's latest graded attempt at a challenge. One logical
// row per (challenge, user) pair; a resubmission replaces the prior record,
// so only the most recent verdict survives.
type Submission struct {
	ID          string           `json:"id"`
	ChallengeID string           `json:"challenge_id"`
	UserID      string           `json:"user_id"`
	Code        string           `json:"code"`
	Language    string           `json:"language"`
	Status      SubmissionStatus `json:"status"`
	Score       int              `json:"score"`
	TestResults json.RawMessage  `json:"test_results,omitempty"` // Execution snapshot
	SubmittedAt time.Time        `json:"submitted_at"`

	ChallengeTitle *string `json:"challenge_title,omitempty"` // For display
}
