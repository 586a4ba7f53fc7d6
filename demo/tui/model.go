package tui

import (
	"time"

	"brandpulse/analysis"
	"brandpulse/config"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	fieldPrompt = iota
	fieldInput
	fieldCount
)

const (
	defaultWidth = 72
	promptHeight = 3
	inputHeight  = 6
)

// Model is the form client. All state lives in the analysis machine;
// the model only adds the widgets that edit and display it.
type Model struct {
	api            analysis.API
	machine        *analysis.Machine
	logger         *zap.Logger
	requestTimeout time.Duration

	prompt  textarea.Model
	input   textarea.Model
	focus   int
	spinner spinner.Model
	width   int
}

// Option customizes a Model
type Option func(*Model)

// WithLogger sets the logger for client events
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRequestTimeout bounds each submit and status request
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.requestTimeout = d
		}
	}
}

// NewModel creates a new form model over api, polling with machine
func NewModel(api analysis.API, machine *analysis.Machine, opts ...Option) Model {
	m := Model{
		api:            api,
		machine:        machine,
		logger:         zap.NewNop(),
		requestTimeout: config.DefaultHTTPTimeout,
		prompt:         newTextarea(TextPromptPlaceholder, promptHeight),
		input:          newTextarea(TextInputPlaceholder, inputHeight),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StatusStyle)),
		width:          defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.prompt.Focus()
	return m
}

func newTextarea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(height)
	return ta
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// State returns the analysis state the view renders
func (m Model) State() analysis.State {
	return m.machine.State()
}

// SetFields fills both form fields
func (m Model) SetFields(prompt, input string) Model {
	m.prompt.SetValue(prompt)
	m.input.SetValue(input)
	return m
}

// setFocus moves keyboard focus to the given field
func (m Model) setFocus(field int) (Model, tea.Cmd) {
	m.focus = (field + fieldCount) % fieldCount
	if m.focus == fieldPrompt {
		m.input.Blur()
		return m, m.prompt.Focus()
	}
	m.prompt.Blur()
	return m, m.input.Focus()
}
