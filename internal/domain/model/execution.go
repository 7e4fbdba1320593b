package model

import "time"

// CodeExecution is one persisted execution-log row, written per
// /execute-code call for the invoking user.
type CodeExecution struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Code            string    `json:"code"`
	Language        string    `json:"language"`
	InputData       *string   `json:"input_data,omitempty"`
	Output          string    `json:"output"`
	ErrorMessage    *string   `json:"error_message,omitempty"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	MemoryUsedKb    int       `json:"memory_used_kb"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
