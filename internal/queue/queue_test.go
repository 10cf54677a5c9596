package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/crawlservice/internal/queue"
)

func newTestQueue(t *testing.T) (queue.RedisJobQueue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return queue.NewRedisJobQueue(client, time.Minute, nil), mr
}

func TestEnqueueDequeue_RoundTripsPayload(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "jobs", []byte(`{"url":"https://example.com"}`))
	require.Nil(t, err)
	require.NotEmpty(t, id)

	gotID, payload, ok, derr := q.Dequeue(ctx, "jobs", time.Second)
	require.Nil(t, derr)
	require.True(t, ok)
	require.Equal(t, id, gotID)
	require.JSONEq(t, `{"url":"https://example.com"}`, string(payload))
}

func TestDequeue_EmptyQueueReturnsNotOK(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	_, _, ok, err := q.Dequeue(ctx, "jobs", 50*time.Millisecond)

	require.Nil(t, err)
	require.False(t, ok)
}

func TestComplete_RemovesReservation(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	id, _ := q.Enqueue(ctx, "jobs", []byte(`"payload"`))
	gotID, _, ok, _ := q.Dequeue(ctx, "jobs", time.Second)
	require.True(t, ok)

	err := q.Complete(ctx, "jobs", gotID)
	require.Nil(t, err)

	require.False(t, mr.Exists("job:jobs:"+id))
	n, _ := mr.List("processing:jobs")
	require.Empty(t, n)
}

func TestFail_MovesPayloadToFailedQueue(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, _ = q.Enqueue(ctx, "jobs", []byte(`"payload"`))
	gotID, _, ok, _ := q.Dequeue(ctx, "jobs", time.Second)
	require.True(t, ok)

	err := q.Fail(ctx, "jobs", gotID, "boom")
	require.Nil(t, err)

	failed, ferr := mr.List("failed:jobs")
	require.NoError(t, ferr)
	require.Len(t, failed, 1)
	require.Contains(t, failed[0], "boom")
	require.False(t, mr.Exists("job:jobs:"+gotID))
}

func TestComplete_UnknownReservationReturnsError(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	err := q.Complete(ctx, "jobs", "does-not-exist")

	require.Error(t, err)
}

func TestScheduleAndPromoteDue(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Schedule(ctx, "jobs", []byte(`"later"`), -time.Second)
	require.Nil(t, err)

	n, err := q.PromoteDue(ctx, "jobs")
	require.Nil(t, err)
	require.Equal(t, 1, n)

	items, lerr := mr.List("queue:jobs")
	require.NoError(t, lerr)
	require.Len(t, items, 1)
}

func TestSchedule_NotYetDueIsNotPromoted(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Schedule(ctx, "jobs", []byte(`"later"`), time.Hour)
	require.Nil(t, err)

	n, err := q.PromoteDue(ctx, "jobs")
	require.Nil(t, err)
	require.Equal(t, 0, n)

	items, lerr := mr.List("queue:jobs")
	require.NoError(t, lerr)
	require.Empty(t, items)
}
