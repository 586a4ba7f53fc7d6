package tui

import (
	"time"

	"brandpulse/types"
)

// Messages for the tea program

// SubmittedMsg is sent when the submission request returns
type SubmittedMsg struct {
	Resp *types.AnalyzeResponse
	Err  error
}

// ResultMsg is sent when a status fetch for JobID returns
type ResultMsg struct {
	JobID string
	Resp  *types.ResultResponse
	Err   error
}

// PollTickMsg is sent when the delay before the next status fetch has elapsed
type PollTickMsg struct {
	JobID string
	Time  time.Time
}
