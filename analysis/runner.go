package analysis

import (
	"context"

	"brandpulse/types"

	"go.uber.org/zap"
)

// API is the part of the analysis service the runner talks to
type API interface {
	Submit(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResponse, error)
	GetResult(ctx context.Context, jobID string) (*types.ResultResponse, error)
}

// Runner drives a Machine to a terminal state, one blocking call per cycle
type Runner struct {
	api       API
	machine   *Machine
	scheduler Scheduler
	logger    *zap.Logger
	observer  func(State)
}

// RunnerOption customizes a Runner
type RunnerOption func(*Runner)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s Scheduler) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithLogger sets the logger used for cycle transitions
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers a callback invoked with the state after every transition
func WithObserver(fn func(State)) RunnerOption {
	return func(r *Runner) {
		r.observer = fn
	}
}

// NewRunner creates a runner over api and machine
func NewRunner(api API, machine *Machine, opts ...RunnerOption) *Runner {
	r := &Runner{
		api:       api,
		machine:   machine,
		scheduler: TimerScheduler{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates, submits and polls until a terminal state. The returned error is the
// cycle's *Error (nil on completion) or ErrBusy.
func (r *Runner) Run(ctx context.Context, prompt, input string) (State, error) {
	req, err := r.machine.Submit(prompt, input)
	if err != nil {
		r.notify()
		return r.machine.State(), err
	}
	r.notify()

	resp, err := r.api.Submit(ctx, req)
	step := r.machine.Submitted(resp, err)
	r.notify()
	if step.Action != ActionStop {
		r.logger.Info("analysis submitted", zap.String("job_id", step.JobID))
	}

	for {
		switch step.Action {
		case ActionFetch:
			status, err := r.api.GetResult(ctx, step.JobID)
			if status != nil {
				r.logger.Debug("status fetched",
					zap.String("job_id", step.JobID),
					zap.String("status", string(status.Status)),
					zap.Int("attempt", r.machine.State().Attempts))
			}
			step = r.machine.Observe(step.JobID, status, err)
		case ActionWait:
			select {
			case <-ctx.Done():
				step = r.machine.Abort(ctx.Err())
			case <-r.scheduler.After(step.Delay):
				step = r.machine.Tick(step.JobID)
			}
		default:
			state := r.machine.State()
			if step.Err != nil {
				r.logger.Warn("analysis ended with error",
					zap.String("job_id", state.JobID),
					zap.String("phase", string(state.Phase)),
					zap.String("kind", string(step.Err.Kind)),
					zap.Error(step.Err.Err))
				return state, step.Err
			}
			r.logger.Info("analysis finished", zap.String("job_id", state.JobID), zap.String("phase", string(state.Phase)))
			return state, nil
		}
		r.notify()
	}
}

func (r *Runner) notify() {
	if r.observer != nil {
		r.observer(r.machine.State())
	}
}
