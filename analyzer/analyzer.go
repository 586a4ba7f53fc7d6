package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brandpulse/config"

	"go.uber.org/zap"
)

// Analyzer turns a prompt and its input into analysis text
type Analyzer interface {
	Analyze(ctx context.Context, prompt, input string) (string, error)
}

// BuildPrompt joins the instruction and the brand input into one user message
func BuildPrompt(prompt, input string) string {
	return fmt.Sprintf("%s\n\nInput: %s", prompt, input)
}

// IsRateLimited reports whether err looks like a provider rate limit
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl interface{ RateLimited() bool }
	if errors.As(err, &rl) {
		return rl.RateLimited()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}

// Retrying retries rate limited calls with exponential backoff (2s, 4s, ...).
// Any other error is returned immediately.
type Retrying struct {
	next     Analyzer
	attempts int
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetrying wraps next. attempts <= 0 uses the default of 3.
func NewRetrying(next Analyzer, attempts int, logger *zap.Logger) *Retrying {
	if attempts <= 0 {
		attempts = config.MaxAnalyzeAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, attempts: attempts, logger: logger, sleep: sleepContext}
}

// Analyze implements Analyzer
func (r *Retrying) Analyze(ctx context.Context, prompt, input string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		out, err := r.next.Analyze(ctx, prompt, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsRateLimited(err) || attempt == r.attempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt+1)) * time.Second
		r.logger.Warn("analysis rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if err := r.sleep(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
