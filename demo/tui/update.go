package tui

import (
	"errors"

	"brandpulse/analysis"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case SubmittedMsg:
		return m.handleSubmitted(msg)
	case ResultMsg:
		return m.handleResult(msg)
	case PollTickMsg:
		return m.handlePollTick(msg)
	case spinner.TickMsg:
		if !m.machine.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.updateFields(msg)
}

// handleResize fits the text areas to the terminal width
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	width := msg.Width - 4
	if width > defaultWidth || width <= 0 {
		width = defaultWidth
	}
	m.width = width
	m.prompt.SetWidth(width)
	m.input.SetWidth(width)
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m.setFocus(m.focus + 1)
	case "shift+tab":
		return m.setFocus(m.focus - 1)
	case "ctrl+s":
		return m.submit()
	}
	return m.updateFields(msg)
}

// submit validates the form and sends the request; ignored while loading
func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.machine.Submit(m.prompt.Value(), m.input.Value())
	if errors.Is(err, analysis.ErrBusy) {
		return m, nil
	}
	if err != nil {
		m.logger.Debug("form rejected", zap.Error(err))
		return m, nil
	}

	m.logger.Info("submitting analysis", zap.Int("prompt_len", len(req.Prompt)), zap.Int("input_len", len(req.Input)))
	return m, tea.Batch(submitAnalysis(m.api, req, m.requestTimeout), m.spinner.Tick)
}

// handleSubmitted processes the submission response
func (m Model) handleSubmitted(msg SubmittedMsg) (tea.Model, tea.Cmd) {
	step := m.machine.Submitted(msg.Resp, msg.Err)
	if step.Err != nil {
		m.logger.Warn("submission failed", zap.Error(msg.Err))
	} else if step.Action == analysis.ActionFetch {
		m.logger.Info("analysis submitted", zap.String("job_id", step.JobID))
	}
	return m, m.runStep(step)
}

// handleResult processes a status fetch
func (m Model) handleResult(msg ResultMsg) (tea.Model, tea.Cmd) {
	step := m.machine.Observe(msg.JobID, msg.Resp, msg.Err)
	state := m.machine.State()
	if step.Action == analysis.ActionStop && state.Terminal() && state.JobID == msg.JobID {
		m.logger.Info("analysis finished", zap.String("job_id", msg.JobID), zap.String("phase", string(state.Phase)))
	}
	return m, m.runStep(step)
}

// handlePollTick fires the next status fetch once the poll delay has passed
func (m Model) handlePollTick(msg PollTickMsg) (tea.Model, tea.Cmd) {
	return m, m.runStep(m.machine.Tick(msg.JobID))
}

// updateFields forwards a message to the focused text area
func (m Model) updateFields(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == fieldPrompt {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}
