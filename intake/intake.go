// Package intake turns analysis requests published on Kafka into queued jobs.
package intake

import (
	"context"
	"strings"

	"brandpulse/jobs"
	"brandpulse/metrics"
	"brandpulse/shared/kafka"
	"brandpulse/types"

	"go.uber.org/zap"
)

// Enqueuer stores a new job
type Enqueuer interface {
	Enqueue(ctx context.Context, req types.AnalyzeRequest) (*jobs.Job, error)
}

// NewRequestHandler builds the consumer handler for the requests topic.
// Requests with a blank prompt or input are skipped.
func NewRequestHandler(store Enqueuer, logger *zap.Logger) *kafka.TypedMessageHandler[types.AnalyzeRequest] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &kafka.TypedMessageHandler[types.AnalyzeRequest]{
		Validate: func(req *types.AnalyzeRequest) bool {
			ok := strings.TrimSpace(req.Prompt) != "" && strings.TrimSpace(req.Input) != ""
			if !ok {
				logger.Warn("skipping analysis request with blank fields")
			}
			return ok
		},
		Process: func(ctx context.Context, req *types.AnalyzeRequest) error {
			job, err := store.Enqueue(ctx, *req)
			if err != nil {
				return err
			}
			metrics.JobsSubmitted.WithLabelValues("kafka").Inc()
			logger.Info("analysis request queued from kafka", zap.String("job_id", job.ID))
			return nil
		},
		AlwaysMark: true,
	}
}
