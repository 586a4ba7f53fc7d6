package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brandpulse/jobs"
	"brandpulse/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, *jobs.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := jobs.NewStore(client, "test", time.Hour)
	return NewRouter(store, zaptest.NewLogger(t)), store, mr
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeQueuesJob(t *testing.T) {
	r, store, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/api/v1/analyze", `{"prompt":"Describe tone","input":"Acme"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)

	job, err := store.Fetch(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Describe tone", job.Prompt)
	assert.Equal(t, "Acme", job.Input)

	n, err := store.QueueLength(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAnalyzeRejectsBadPayload(t *testing.T) {
	r, _, _ := newTestServer(t)
	for _, body := range []string{
		``,
		`not json`,
		`[]`,
		`{"prompt":"p"}`,
		`{"input":"i"}`,
	} {
		w := do(r, http.MethodPost, "/api/v1/analyze", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.JSONEq(t, `{"error":"Invalid request payload"}`, w.Body.String())
	}
}

func TestAnalyzeStringifiesNonStringValues(t *testing.T) {
	r, store, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/api/v1/analyze", `{"prompt":"Score","input":42}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	job, err := store.Fetch(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "42", job.Input)
}

func TestResultStatuses(t *testing.T) {
	r, store, _ := newTestServer(t)
	ctx := context.Background()

	w := do(r, http.MethodGet, "/api/v1/results/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Invalid job ID"}`, w.Body.String())

	pending, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)
	w = do(r, http.MethodGet, "/api/v1/results/"+pending.ID, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"in_progress"}`, w.Body.String())

	require.NoError(t, store.MarkStarted(ctx, pending.ID))
	w = do(r, http.MethodGet, "/api/v1/results/"+pending.ID, "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.NoError(t, store.Finish(ctx, pending.ID, json.RawMessage(`"Warm tone"`)))
	w = do(r, http.MethodGet, "/api/v1/results/"+pending.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"completed","result":"Warm tone"}`, w.Body.String())

	failed, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, failed.ID, "panic"))
	w = do(r, http.MethodGet, "/api/v1/results/"+failed.ID, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"failed"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := do(r, http.MethodOptions, "/api/v1/analyze", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/api/v1/results/unknown", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	r, _, mr := newTestServer(t)

	w := do(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	mr.Close()
	w = do(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestServer(t)
	do(r, http.MethodPost, "/api/v1/analyze", `{"prompt":"p","input":"i"}`)

	w := do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "analysis_jobs_submitted_total")
}
