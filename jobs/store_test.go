package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"brandpulse/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "test", time.Hour), mr
}

func TestEnqueueDequeue(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "Describe tone", Input: "Acme"})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.True(t, mr.Exists("analysis:job:"+job.ID))
	assert.Equal(t, time.Hour, mr.TTL("analysis:job:"+job.ID))

	n, err := store.QueueLength(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, StateQueued, got.State)
	assert.Equal(t, "Describe tone", got.Prompt)
	assert.Equal(t, "Acme", got.Input)
	assert.Equal(t, types.JobStatusInProgress, got.Status())
}

func TestDequeueSkipsExpiredJob(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)
	mr.Del("analysis:job:" + job.ID)

	got, err := store.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDequeueKeepsIDWhenFetchFails(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// a non-hash value makes HGETALL fail with WRONGTYPE
	require.NoError(t, mr.Set("analysis:job:broken", "oops"))
	_, err := mr.Push("analysis:queue:test", "broken")
	require.NoError(t, err)

	got, err := store.Dequeue(ctx, time.Second)
	require.Error(t, err)
	assert.Nil(t, got)

	n, err := store.QueueLength(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	ids, err := mr.List("analysis:queue:test")
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, ids)
}

func TestRequeue(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)
	_, err = store.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, store.MarkStarted(ctx, job.ID))

	require.NoError(t, store.Requeue(ctx, job.ID))

	got, err := store.Fetch(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, got.State)
	assert.True(t, got.StartedAt.IsZero())
	assert.Equal(t, time.Hour, mr.TTL("analysis:job:"+job.ID))

	again, err := store.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, job.ID, again.ID)

	assert.ErrorIs(t, store.Requeue(ctx, "missing"), ErrJobNotFound)
}

func TestFetchUnknownJob(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)

	require.NoError(t, store.MarkStarted(ctx, job.ID))
	got, err := store.Fetch(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateStarted, got.State)
	assert.False(t, got.StartedAt.IsZero())
	assert.Equal(t, types.JobStatusInProgress, got.Status())

	require.NoError(t, store.Finish(ctx, job.ID, json.RawMessage(`"Warm tone"`)))
	got, err = store.Fetch(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusCompleted, got.Status())
	assert.JSONEq(t, `"Warm tone"`, string(got.Result))
	assert.False(t, got.FinishedAt.IsZero())
}

func TestFailAndInvalidFinish(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, types.AnalyzeRequest{Prompt: "p", Input: "i"})
	require.NoError(t, err)

	assert.Error(t, store.Finish(ctx, job.ID, json.RawMessage(`not json`)))

	require.NoError(t, store.Fail(ctx, job.ID, "boom"))
	got, err := store.Fetch(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusFailed, got.Status())
	assert.Equal(t, "boom", got.Error)
}

func TestUpdateUnknownJob(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.MarkStarted(context.Background(), "missing"), ErrJobNotFound)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
