package analysis

import (
	"errors"
	"strings"
	"time"

	"brandpulse/config"
	"brandpulse/types"
)

// Phase is the position of the client in the submit/poll state machine
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseInvalid     Phase = "invalid"
	PhaseSubmitting  Phase = "submitting"
	PhaseSubmitError Phase = "submit_error"
	PhasePolling     Phase = "polling"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
	PhaseTimedOut    Phase = "timed_out"
	PhasePollError   Phase = "poll_error"
)

// State is everything the view renders. It is a value; callers get copies.
type State struct {
	Prompt   string
	Input    string
	JobID    string
	Result   string
	Loading  bool
	Error    string
	Phase    Phase
	Attempts int
}

// Terminal reports whether the last cycle has ended
func (s State) Terminal() bool {
	switch s.Phase {
	case PhaseIdle, PhaseSubmitting, PhasePolling:
		return false
	}
	return true
}

// Action tells the driver what to do next
type Action int

const (
	ActionStop Action = iota
	ActionFetch
	ActionWait
)

func (a Action) String() string {
	switch a {
	case ActionFetch:
		return "fetch"
	case ActionWait:
		return "wait"
	}
	return "stop"
}

// Step is returned by every transition. Err is set when the cycle stopped on an error.
type Step struct {
	Action Action
	JobID  string
	Delay  time.Duration
	Err    *Error
}

// httpStatusError is satisfied by client.StatusError
type httpStatusError interface {
	HTTPStatus() int
}

var errMissingJobID = errors.New("response did not include a job_id")

// Machine is the submit/poll state machine. It performs no I/O and never sleeps;
// drivers execute the returned Steps. Not safe for concurrent use.
type Machine struct {
	state       State
	maxAttempts int
	interval    time.Duration
}

// NewMachine creates a machine that re-polls a pending job at most maxAttempts times,
// interval apart. A negative ceiling or non-positive interval falls back to 30 and 10s.
func NewMachine(maxAttempts int, interval time.Duration) *Machine {
	if maxAttempts < 0 {
		maxAttempts = config.DefaultMaxPollAttempts
	}
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	return &Machine{
		state:       State{Phase: PhaseIdle},
		maxAttempts: maxAttempts,
		interval:    interval,
	}
}

// State returns a snapshot of the current state
func (m *Machine) State() State {
	return m.state
}

// MaxAttempts is the re-poll ceiling
func (m *Machine) MaxAttempts() int {
	return m.maxAttempts
}

// Interval is the delay between two status fetches
func (m *Machine) Interval() time.Duration {
	return m.interval
}

// Submit validates the form and starts a new cycle. On success the caller must send the
// returned request and report the outcome through Submitted.
func (m *Machine) Submit(prompt, input string) (types.AnalyzeRequest, error) {
	if m.state.Loading {
		return types.AnalyzeRequest{}, ErrBusy
	}

	prompt = strings.TrimSpace(prompt)
	input = strings.TrimSpace(input)
	if prompt == "" || input == "" {
		m.state.Result = ""
		m.state.Error = config.MsgValidation
		m.state.Phase = PhaseInvalid
		return types.AnalyzeRequest{}, &Error{Kind: KindValidation, Message: config.MsgValidation}
	}

	m.state.Prompt = prompt
	m.state.Input = input
	m.state.Error = ""
	m.state.Result = ""
	m.state.Loading = true
	m.state.Attempts = 0
	m.state.Phase = PhaseSubmitting

	return types.AnalyzeRequest{Prompt: prompt, Input: input}, nil
}

// Submitted records the outcome of the submission request
func (m *Machine) Submitted(resp *types.AnalyzeResponse, err error) Step {
	if m.state.Phase != PhaseSubmitting {
		return Step{Action: ActionStop}
	}

	if err != nil {
		var se httpStatusError
		if errors.As(err, &se) {
			return m.stop(PhaseSubmitError, &Error{Kind: KindSubmission, Message: config.MsgSubmitFailed, Err: err})
		}
		return m.stop(PhaseSubmitError, &Error{Kind: KindSubmission, Message: config.MsgSubmitError + err.Error(), Err: err})
	}

	if resp == nil || strings.TrimSpace(resp.JobID) == "" {
		return m.stop(PhaseSubmitError, &Error{Kind: KindSubmission, Message: config.MsgSubmitError + errMissingJobID.Error(), Err: errMissingJobID})
	}

	m.state.JobID = resp.JobID
	m.state.Phase = PhasePolling
	return Step{Action: ActionFetch, JobID: resp.JobID}
}

// Observe records the outcome of a status fetch for jobID.
// Outcomes for any job other than the one being polled are ignored.
func (m *Machine) Observe(jobID string, resp *types.ResultResponse, err error) Step {
	if !m.polling(jobID) {
		return Step{Action: ActionStop}
	}

	if err == nil && resp == nil {
		err = errors.New("empty status response")
	}
	if err != nil {
		return m.stop(PhasePollError, &Error{Kind: KindPollTransport, Message: config.MsgPollError + err.Error(), Err: err})
	}

	switch resp.Status {
	case types.JobStatusCompleted:
		m.state.Result = RenderResult(resp.Result)
		m.state.Error = ""
		m.state.Loading = false
		m.state.Phase = PhaseCompleted
		return Step{Action: ActionStop, JobID: jobID}
	case types.JobStatusFailed:
		return m.stop(PhaseFailed, &Error{Kind: KindAnalysisFailed, Message: config.MsgAnalysisFailed})
	}

	if m.state.Attempts < m.maxAttempts {
		m.state.Attempts++
		return Step{Action: ActionWait, JobID: jobID, Delay: m.interval}
	}
	return m.stop(PhaseTimedOut, &Error{Kind: KindTimedOut, Message: config.MsgTimedOut})
}

// Tick is called when the delay of a Wait step for jobID has elapsed
func (m *Machine) Tick(jobID string) Step {
	if !m.polling(jobID) {
		return Step{Action: ActionStop}
	}
	return Step{Action: ActionFetch, JobID: jobID}
}

// Abort ends an in-flight cycle early, e.g. when the driver's context is cancelled
func (m *Machine) Abort(err error) Step {
	switch m.state.Phase {
	case PhaseSubmitting:
		return m.stop(PhaseSubmitError, &Error{Kind: KindSubmission, Message: config.MsgSubmitError + err.Error(), Err: err})
	case PhasePolling:
		return m.stop(PhasePollError, &Error{Kind: KindPollTransport, Message: config.MsgPollError + err.Error(), Err: err})
	}
	return Step{Action: ActionStop}
}

func (m *Machine) polling(jobID string) bool {
	return m.state.Phase == PhasePolling && jobID == m.state.JobID
}

// stop performs a terminal transition that ends in an error
func (m *Machine) stop(phase Phase, err *Error) Step {
	m.state.Result = ""
	m.state.Error = err.Message
	m.state.Loading = false
	m.state.Phase = phase
	return Step{Action: ActionStop, JobID: m.state.JobID, Err: err}
}
