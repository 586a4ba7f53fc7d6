package tui

import (
	"fmt"
	"strings"

	"brandpulse/analysis"
)

// View implements tea.Model interface
func (m Model) View() string {
	state := m.machine.State()
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")

	// Form
	b.WriteString(m.renderLabel(TextPromptLabel, fieldPrompt))
	b.WriteString("\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderLabel(TextInputLabel, fieldInput))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if state.Loading {
		b.WriteString(DisabledButtonStyle.Render(TextSubmittingButton))
	} else {
		b.WriteString(ButtonStyle.Render(TextSubmitButton))
	}
	b.WriteString("\n\n")

	// Panels
	if state.Loading {
		b.WriteString(m.renderLoading(state))
		b.WriteString("\n\n")
	}

	// error and result are exclusive; the error wins if both were ever set
	if state.Error != "" {
		b.WriteString(ErrorBoxStyle.Width(m.width).Render(
			ErrorStyle.Render(TextErrorHeading) + "\n" + state.Error))
		b.WriteString("\n\n")
	} else if state.Result != "" {
		b.WriteString(ResultBoxStyle.Width(m.width).Render(
			StatusStyle.Render(TextResultHeading) + "\n\n" + state.Result))
		b.WriteString("\n\n")
	}

	// Help text
	if state.Loading {
		b.WriteString(InfoStyle.Render(TextFooterRunning))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterIdle))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLabel(text string, field int) string {
	if m.focus == field {
		return FocusedLabelStyle.Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}

// renderLoading shows the spinner and, once known, the job being polled
func (m Model) renderLoading(state analysis.State) string {
	line := m.spinner.View() + " " + StatusStyle.Render(TextLoading)
	if state.Phase == analysis.PhasePolling && state.JobID != "" {
		line += "\n" + InfoStyle.Render(fmt.Sprintf("Job ID: %s (check %d/%d)",
			state.JobID, state.Attempts+1, m.machine.MaxAttempts()+1))
	}
	return line
}
