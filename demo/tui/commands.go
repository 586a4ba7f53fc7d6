package tui

import (
	"context"
	"time"

	"brandpulse/analysis"
	"brandpulse/types"

	tea "github.com/charmbracelet/bubbletea"
)

// submitAnalysis creates a command that posts the analysis request
func submitAnalysis(api analysis.API, req types.AnalyzeRequest, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := api.Submit(ctx, req)
		return SubmittedMsg{Resp: resp, Err: err}
	}
}

// fetchResult creates a command that fetches the status of jobID
func fetchResult(api analysis.API, jobID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := api.GetResult(ctx, jobID)
		return ResultMsg{JobID: jobID, Resp: resp, Err: err}
	}
}

// schedulePoll creates a command that fires once delay has passed
func schedulePoll(jobID string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return PollTickMsg{JobID: jobID, Time: t}
	})
}

// runStep turns a state machine step into the command that carries it out
func (m Model) runStep(step analysis.Step) tea.Cmd {
	switch step.Action {
	case analysis.ActionFetch:
		return fetchResult(m.api, step.JobID, m.requestTimeout)
	case analysis.ActionWait:
		return schedulePoll(step.JobID, step.Delay)
	}
	return nil
}
