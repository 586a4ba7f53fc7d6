package types

import (
	"encoding/json"
	"time"
)

// JobStatus is the status string reported by GET /api/v1/results/{job_id}
type JobStatus string

const (
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusInProgress JobStatus = "in_progress"
)

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Prompt string `json:"prompt"`
	Input  string `json:"input"`
}

// AnalyzeResponse is returned by POST /api/v1/analyze on success
type AnalyzeResponse struct {
	JobID string `json:"job_id"`
}

// ResultResponse is returned by GET /api/v1/results/{job_id}.
// Result is kept raw: the service may answer with a plain string or any JSON value.
type ResultResponse struct {
	Status JobStatus       `json:"status,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// JobEvent is published when a job reaches a terminal state
type JobEvent struct {
	JobID      string          `json:"job_id"`
	Status     JobStatus       `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}
