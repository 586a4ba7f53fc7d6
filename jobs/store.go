package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brandpulse/config"
	"brandpulse/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned when the job hash does not exist (never created or expired)
var ErrJobNotFound = errors.New("job not found")

// State is the lifecycle of a job inside the store
type State string

const (
	StateQueued   State = "queued"
	StateStarted  State = "started"
	StateFinished State = "finished"
	StateFailed   State = "failed"
)

// Job is one analysis request and its outcome
type Job struct {
	ID         string
	State      State
	Prompt     string
	Input      string
	Result     json.RawMessage
	Error      string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Status maps the store state to the status reported to clients
func (j *Job) Status() types.JobStatus {
	switch j.State {
	case StateFinished:
		return types.JobStatusCompleted
	case StateFailed:
		return types.JobStatusFailed
	}
	return types.JobStatusInProgress
}

// Store keeps jobs in Redis hashes and queues their IDs on a Redis list
type Store struct {
	client *redis.Client
	queue  string
	ttl    time.Duration
}

// NewStore wraps an existing Redis client
func NewStore(client *redis.Client, queueName string, ttl time.Duration) *Store {
	if queueName == "" {
		queueName = config.DefaultQueueName
	}
	if ttl <= 0 {
		ttl = config.DefaultJobTTL
	}
	return &Store{client: client, queue: queueName, ttl: ttl}
}

// Connect parses a redis:// URL and verifies connectivity
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

func jobKey(id string) string {
	return "analysis:job:" + id
}

func (s *Store) queueKey() string {
	return "analysis:queue:" + s.queue
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Enqueue stores a new job and pushes its ID on the queue
func (s *Store) Enqueue(ctx context.Context, req types.AnalyzeRequest) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		State:      StateQueued,
		Prompt:     req.Prompt,
		Input:      req.Input,
		EnqueuedAt: time.Now().UTC(),
	}

	key := jobKey(job.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"state", string(job.State),
			"prompt", job.Prompt,
			"input", job.Input,
			"enqueued_at", formatTime(job.EnqueuedAt))
		pipe.Expire(ctx, key, s.ttl)
		pipe.RPush(ctx, s.queueKey(), job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// Dequeue blocks up to timeout for the next queued job.
// It returns (nil, nil) when the timeout passes with an empty queue.
func (s *Store) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := s.client.BLPop(ctx, timeout, s.queueKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// BLPOP replies with [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue job: unexpected reply %v", res)
	}

	job, err := s.Fetch(ctx, res[1])
	if errors.Is(err, ErrJobNotFound) {
		// hash expired while the ID sat on the queue
		return nil, nil
	}
	if err != nil {
		// the ID is already off the list; put it back so the job is not lost
		if perr := s.client.RPush(context.WithoutCancel(ctx), s.queueKey(), res[1]).Err(); perr != nil {
			return nil, errors.Join(err, fmt.Errorf("requeue job %s: %w", res[1], perr))
		}
		return nil, err
	}
	return job, nil
}

// Fetch loads a job by ID
func (s *Store) Fetch(ctx context.Context, id string) (*Job, error) {
	fields, err := s.client.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrJobNotFound
	}

	job := &Job{
		ID:         id,
		State:      State(fields["state"]),
		Prompt:     fields["prompt"],
		Input:      fields["input"],
		Error:      fields["error"],
		EnqueuedAt: parseTime(fields["enqueued_at"]),
		StartedAt:  parseTime(fields["started_at"]),
		FinishedAt: parseTime(fields["finished_at"]),
	}
	if r, ok := fields["result"]; ok && r != "" {
		job.Result = json.RawMessage(r)
	}
	return job, nil
}

// MarkStarted moves a job to the started state
func (s *Store) MarkStarted(ctx context.Context, id string) error {
	return s.update(ctx, id, "state", string(StateStarted), "started_at", formatTime(time.Now().UTC()))
}

// Finish stores the job result. result must be valid JSON.
func (s *Store) Finish(ctx context.Context, id string, result json.RawMessage) error {
	if !json.Valid(result) {
		return fmt.Errorf("finish job %s: result is not valid JSON", id)
	}
	return s.update(ctx, id,
		"state", string(StateFinished),
		"result", string(result),
		"finished_at", formatTime(time.Now().UTC()))
}

// Fail marks the job as failed with the given reason
func (s *Store) Fail(ctx context.Context, id string, reason string) error {
	return s.update(ctx, id,
		"state", string(StateFailed),
		"error", reason,
		"finished_at", formatTime(time.Now().UTC()))
}

// Requeue moves a job back to the queued state and pushes its ID on the queue again
func (s *Store) Requeue(ctx context.Context, id string) error {
	key := jobKey(id)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("requeue job %s: %w", id, err)
	}
	if exists == 0 {
		return ErrJobNotFound
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "state", string(StateQueued))
		pipe.HDel(ctx, key, "started_at")
		pipe.Expire(ctx, key, s.ttl)
		pipe.RPush(ctx, s.queueKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("requeue job %s: %w", id, err)
	}
	return nil
}

// QueueLength reports how many jobs are waiting
func (s *Store) QueueLength(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.queueKey()).Result()
}

// update sets fields on an existing job and refreshes its TTL
func (s *Store) update(ctx context.Context, id string, values ...interface{}) error {
	key := jobKey(id)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if exists == 0 {
		return ErrJobNotFound
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
