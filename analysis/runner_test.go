package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"brandpulse/config"
	"brandpulse/types"

	"go.uber.org/zap/zaptest"
)

// fakeScheduler fires immediately and accumulates simulated time
type fakeScheduler struct {
	elapsed time.Duration
	calls   int
}

func (f *fakeScheduler) After(d time.Duration) <-chan time.Time {
	f.elapsed += d
	f.calls++
	ch := make(chan time.Time, 1)
	ch <- time.Unix(0, 0).Add(f.elapsed)
	return ch
}

// blockingScheduler never fires
type blockingScheduler struct{}

func (blockingScheduler) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

type fakeAPI struct {
	submitResp *types.AnalyzeResponse
	submitErr  error
	statuses   []*types.ResultResponse
	statusErr  error

	submits   []types.AnalyzeRequest
	fetchedID []string
}

func (f *fakeAPI) Submit(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	f.submits = append(f.submits, req)
	return f.submitResp, f.submitErr
}

func (f *fakeAPI) GetResult(ctx context.Context, jobID string) (*types.ResultResponse, error) {
	f.fetchedID = append(f.fetchedID, jobID)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return &types.ResultResponse{Status: types.JobStatusInProgress}, nil
	}
	next := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return next, nil
}

func newTestRunner(t *testing.T, api API, sched Scheduler) *Runner {
	return NewRunner(api, NewMachine(config.DefaultMaxPollAttempts, config.DefaultPollInterval),
		WithScheduler(sched), WithLogger(zaptest.NewLogger(t)))
}

func TestRunBlankFieldsMakeNoNetworkCall(t *testing.T) {
	api := &fakeAPI{}
	r := newTestRunner(t, api, &fakeScheduler{})

	state, err := r.Run(context.Background(), "  ", "Acme")
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.submits) != 0 || len(api.fetchedID) != 0 {
		t.Fatalf("network was used: %d submits, %d fetches", len(api.submits), len(api.fetchedID))
	}
	if state.Error != config.MsgValidation {
		t.Fatalf("Error = %q", state.Error)
	}
}

func TestRunCompletesAfterOneFetch(t *testing.T) {
	api := &fakeAPI{
		submitResp: &types.AnalyzeResponse{JobID: "abc"},
		statuses:   []*types.ResultResponse{{Status: types.JobStatusCompleted, Result: json.RawMessage(`"X"`)}},
	}
	sched := &fakeScheduler{}
	r := newTestRunner(t, api, sched)

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(api.fetchedID) != 1 || api.fetchedID[0] != "abc" {
		t.Fatalf("fetches = %v; want [abc]", api.fetchedID)
	}
	if state.Result != "X" || state.Loading || state.Phase != PhaseCompleted {
		t.Fatalf("unexpected state %+v", state)
	}
	if sched.calls != 0 {
		t.Fatalf("scheduler used %d times", sched.calls)
	}
}

func TestRunKeepsPollingWhenStatusMissing(t *testing.T) {
	api := &fakeAPI{
		submitResp: &types.AnalyzeResponse{JobID: "abc"},
		statuses: []*types.ResultResponse{
			{Error: "Invalid job ID"},
			{Status: types.JobStatusCompleted, Result: json.RawMessage(`"X"`)},
		},
	}
	sched := &fakeScheduler{}
	r := newTestRunner(t, api, sched)

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(api.fetchedID) != 2 || sched.calls != 1 {
		t.Fatalf("fetches=%d scheduled=%d; want 2 and 1", len(api.fetchedID), sched.calls)
	}
	if state.Result != "X" || state.Phase != PhaseCompleted {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestRunTimesOutAfterCeiling(t *testing.T) {
	api := &fakeAPI{submitResp: &types.AnalyzeResponse{JobID: "abc"}}
	sched := &fakeScheduler{}
	r := newTestRunner(t, api, sched)

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if !IsKind(err, KindTimedOut) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if sched.calls != config.DefaultMaxPollAttempts {
		t.Fatalf("scheduled %d re-polls; want %d", sched.calls, config.DefaultMaxPollAttempts)
	}
	if sched.elapsed != 300*time.Second {
		t.Fatalf("simulated wait = %s; want 5m0s", sched.elapsed)
	}
	// the first fetch plus one per scheduled re-poll, nothing after the ceiling
	if len(api.fetchedID) != config.DefaultMaxPollAttempts+1 {
		t.Fatalf("fetches = %d", len(api.fetchedID))
	}
	if state.Error != config.MsgTimedOut || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestRunFailedStatus(t *testing.T) {
	api := &fakeAPI{
		submitResp: &types.AnalyzeResponse{JobID: "abc"},
		statuses: []*types.ResultResponse{
			{Status: types.JobStatusInProgress},
			{Status: types.JobStatusInProgress},
			{Status: types.JobStatusFailed},
		},
	}
	sched := &fakeScheduler{}
	r := newTestRunner(t, api, sched)

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if !IsKind(err, KindAnalysisFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	if len(api.fetchedID) != 3 || sched.calls != 2 {
		t.Fatalf("fetches=%d scheduled=%d", len(api.fetchedID), sched.calls)
	}
	if state.Error != config.MsgAnalysisFailed {
		t.Fatalf("Error = %q", state.Error)
	}
}

func TestRunSubmitHTTP500StartsNoPolling(t *testing.T) {
	api := &fakeAPI{submitErr: statusErr{500}}
	r := newTestRunner(t, api, &fakeScheduler{})

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if !IsKind(err, KindSubmission) {
		t.Fatalf("expected submission error, got %v", err)
	}
	if len(api.fetchedID) != 0 {
		t.Fatalf("polling started after failed submit")
	}
	if state.Error != config.MsgSubmitFailed || state.Loading {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestRunTransportErrorStopsImmediately(t *testing.T) {
	api := &fakeAPI{
		submitResp: &types.AnalyzeResponse{JobID: "abc"},
		statusErr:  errors.New("connection reset by peer"),
	}
	sched := &fakeScheduler{}
	r := newTestRunner(t, api, sched)

	state, err := r.Run(context.Background(), "Describe tone", "Acme")
	if !IsKind(err, KindPollTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(api.fetchedID) != 1 || sched.calls != 0 {
		t.Fatalf("fetches=%d scheduled=%d", len(api.fetchedID), sched.calls)
	}
	if state.Error != config.MsgPollError+"connection reset by peer" {
		t.Fatalf("Error = %q", state.Error)
	}
}

func TestRunResubmitAfterTerminalState(t *testing.T) {
	api := &fakeAPI{
		submitResp: &types.AnalyzeResponse{JobID: "first"},
		statuses:   []*types.ResultResponse{{Status: types.JobStatusFailed}},
	}
	var observed []State
	r := NewRunner(api, NewMachine(30, time.Second), WithScheduler(&fakeScheduler{}),
		WithObserver(func(s State) { observed = append(observed, s) }))

	if _, err := r.Run(context.Background(), "p", "i"); err == nil {
		t.Fatalf("expected first run to fail")
	}

	api.submitResp = &types.AnalyzeResponse{JobID: "second"}
	api.statuses = []*types.ResultResponse{{Status: types.JobStatusCompleted, Result: json.RawMessage(`{"ok":true}`)}}
	observed = nil

	state, err := r.Run(context.Background(), "p", "i")
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if len(observed) == 0 {
		t.Fatalf("observer not called")
	}
	if first := observed[0]; first.Error != "" || first.Result != "" || !first.Loading {
		t.Fatalf("state not reset at resubmit: %+v", first)
	}
	if state.JobID != "second" || api.fetchedID[len(api.fetchedID)-1] != "second" {
		t.Fatalf("second cycle polled %v", api.fetchedID)
	}
	if state.Result != "{\n  \"ok\": true\n}" {
		t.Fatalf("Result = %q", state.Result)
	}
}

func TestRunContextCancelledWhileWaiting(t *testing.T) {
	api := &fakeAPI{submitResp: &types.AnalyzeResponse{JobID: "abc"}}
	r := newTestRunner(t, api, blockingScheduler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var state State
	var err error
	go func() {
		defer close(done)
		state, err = r.Run(ctx, "p", "i")
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if state.Loading {
		t.Fatalf("loading still set after cancel")
	}
}
