package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"brandpulse/jobs"
	"brandpulse/metrics"
	"brandpulse/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const resultsRoute = "/api/v1/results/:job_id"

type analysisController struct {
	store  JobStore
	logger *zap.Logger
}

// RegisterAnalysisRoutes registers the submit and result endpoints.
func RegisterAnalysisRoutes(r *gin.Engine, store JobStore, logger *zap.Logger) {
	ctl := &analysisController{store: store, logger: logger}
	g := r.Group("/api/v1")
	g.POST("/analyze", ctl.handleAnalyze)
	g.GET("/results/:job_id", ctl.handleResult)
}

// handleAnalyze queues a new analysis job and returns its ID with 202 Accepted.
func (ctl *analysisController) handleAnalyze(c *gin.Context) {
	req, ok := decodeAnalyzeRequest(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	job, err := ctl.store.Enqueue(c.Request.Context(), req)
	if err != nil {
		ctl.logger.Error("failed to enqueue job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}
	metrics.JobsSubmitted.WithLabelValues("http").Inc()

	c.JSON(http.StatusAccepted, types.AnalyzeResponse{JobID: job.ID})
}

// handleResult reports the job status: 200 completed, 500 failed, 202 otherwise.
func (ctl *analysisController) handleResult(c *gin.Context) {
	job, err := ctl.store.Fetch(c.Request.Context(), c.Param("job_id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid job ID"})
		return
	}
	if err != nil {
		ctl.logger.Error("failed to fetch job", zap.String("job_id", c.Param("job_id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch job"})
		return
	}

	switch job.Status() {
	case types.JobStatusCompleted:
		c.JSON(http.StatusOK, types.ResultResponse{Status: types.JobStatusCompleted, Result: resultOrNull(job.Result)})
	case types.JobStatusFailed:
		c.JSON(http.StatusInternalServerError, types.ResultResponse{Status: types.JobStatusFailed})
	default:
		c.JSON(http.StatusAccepted, types.ResultResponse{Status: types.JobStatusInProgress})
	}
}

// decodeAnalyzeRequest requires a JSON object with "prompt" and "input" keys.
// Non-string values are kept as their JSON text.
func decodeAnalyzeRequest(c *gin.Context) (types.AnalyzeRequest, bool) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return types.AnalyzeRequest{}, false
	}
	prompt, ok := body["prompt"]
	if !ok {
		return types.AnalyzeRequest{}, false
	}
	input, ok := body["input"]
	if !ok {
		return types.AnalyzeRequest{}, false
	}
	return types.AnalyzeRequest{Prompt: stringValue(prompt), Input: stringValue(input)}, true
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func resultOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
