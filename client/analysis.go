package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"brandpulse/config"
	"brandpulse/types"
)

// ErrMissingJobID is returned when a successful submission carries no job_id
var ErrMissingJobID = errors.New("response did not include a job_id")

// Submit posts a new analysis job and returns the service's job handle.
// Any non-2xx answer is reported as a *StatusError.
func (c *AnalysisClient) Submit(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	status, body, err := c.doJSONRequest(ctx, http.MethodPost, config.AnalyzePath, req)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, &StatusError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	}

	var resp types.AnalyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if strings.TrimSpace(resp.JobID) == "" {
		return nil, ErrMissingJobID
	}

	return &resp, nil
}

// GetResult fetches the current status of a job.
// Any JSON body is returned whatever the HTTP status: the service reports "failed" with a 500,
// pending jobs with a 202, and a body without a status counts as still pending.
// Only a body that is not JSON is an error (*StatusError on a non-2xx).
func (c *AnalysisClient) GetResult(ctx context.Context, jobID string) (*types.ResultResponse, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrMissingJobID
	}

	status, body, err := c.doJSONRequest(ctx, http.MethodGet, config.ResultsPath+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}

	var resp types.ResultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if !isSuccess(status) {
			return nil, &StatusError{StatusCode: status, Body: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if bytes.Equal(bytes.TrimSpace(resp.Result), []byte("null")) {
		resp.Result = nil
	}

	return &resp, nil
}
