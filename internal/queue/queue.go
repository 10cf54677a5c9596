package queue

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rohmanhakim/crawlservice/internal/metadata"
	"github.com/rohmanhakim/crawlservice/pkg/failure"
)

/*
Responsibilities

- Hand off payloads between producers and a single consuming worker with an
  at-least-once delivery guarantee
- Survive a worker crash mid-job via a TTL'd per-reservation key, not an
  in-memory lease
- Hold due scheduled entries separately from the live queue until their time
  arrives

Redis key scheme per queue Q:
  queue:Q       - pending payloads (LPUSH producer side, pop from the right)
  processing:Q  - payloads currently reserved by a worker
  failed:Q      - {payload, error} envelopes for post-mortem
  job:Q:{id}    - per-reservation key, TTL = visibility timeout
  scheduled:Q   - sorted set of payloads keyed by absolute Unix-epoch time
*/

// JobQueue is the reliable hand-off contract every producer/consumer in the
// service depends on. Handlers consuming from a JobQueue must be idempotent:
// delivery is at-least-once, not exactly-once.
type JobQueue interface {
	Enqueue(ctx context.Context, queue string, payload []byte) (string, failure.ClassifiedError)
	Dequeue(ctx context.Context, queue string, pollTimeout time.Duration) (id string, payload []byte, ok bool, err failure.ClassifiedError)
	Complete(ctx context.Context, queue, id string) failure.ClassifiedError
	Fail(ctx context.Context, queue, id, errMsg string) failure.ClassifiedError
	Schedule(ctx context.Context, queue string, payload []byte, delay time.Duration) (string, failure.ClassifiedError)
}

const DefaultVisibilityTimeout = 5 * time.Minute

type RedisJobQueue struct {
	client            *redis.Client
	visibilityTimeout time.Duration
	metadataSink      metadata.MetadataSink
}

func NewRedisJobQueue(client *redis.Client, visibilityTimeout time.Duration, metadataSink metadata.MetadataSink) RedisJobQueue {
	if visibilityTimeout <= 0 {
		visibilityTimeout = DefaultVisibilityTimeout
	}
	return RedisJobQueue{client: client, visibilityTimeout: visibilityTimeout, metadataSink: metadataSink}
}

func (q *RedisJobQueue) Enqueue(ctx context.Context, queueName string, payload []byte) (string, failure.ClassifiedError) {
	id := uuid.New().String()
	raw, err := envelope{ID: id, Payload: payload}.marshal()
	if err != nil {
		return "", q.recordAndWrap("enqueue", queueName, newSerializationError(err.Error()))
	}

	if err := q.client.LPush(ctx, queueKey(queueName), raw).Err(); err != nil {
		return "", q.recordAndWrap("enqueue", queueName, newConnectionError(err.Error()))
	}

	return id, nil
}

// Dequeue atomically moves one payload from queue:Q to processing:Q via
// BRPOPLPUSH, then stamps a TTL'd reservation key so the payload survives a
// worker crash until the visibility timeout expires. ok is false (with a nil
// error) when pollTimeout elapses with nothing to dequeue.
func (q *RedisJobQueue) Dequeue(ctx context.Context, queueName string, pollTimeout time.Duration) (string, []byte, bool, failure.ClassifiedError) {
	raw, err := q.client.BRPopLPush(ctx, queueKey(queueName), processingKey(queueName), pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, q.recordAndWrap("dequeue", queueName, newConnectionError(err.Error()))
	}

	env, err := unmarshalEnvelope(raw)
	if err != nil {
		return "", nil, false, q.recordAndWrap("dequeue", queueName, newSerializationError(err.Error()))
	}

	if err := q.client.SetEx(ctx, jobKey(queueName, env.ID), raw, q.visibilityTimeout).Err(); err != nil {
		return "", nil, false, q.recordAndWrap("dequeue", queueName, newConnectionError(err.Error()))
	}

	return env.ID, []byte(env.Payload), true, nil
}

// Complete removes the reserved payload from processing:Q by value equality
// and deletes the reservation key, atomically.
func (q *RedisJobQueue) Complete(ctx context.Context, queueName, id string) failure.ClassifiedError {
	raw, err := q.client.Get(ctx, jobKey(queueName, id)).Result()
	if errors.Is(err, redis.Nil) {
		return q.recordAndWrap("complete", queueName, newReservationExpiredError(id))
	}
	if err != nil {
		return q.recordAndWrap("complete", queueName, newConnectionError(err.Error()))
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey(queueName), 0, raw)
	pipe.Del(ctx, jobKey(queueName, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return q.recordAndWrap("complete", queueName, newConnectionError(err.Error()))
	}

	return nil
}

// Fail moves the reserved payload to failed:Q wrapped with errMsg, and
// deletes the reservation key, atomically.
func (q *RedisJobQueue) Fail(ctx context.Context, queueName, id, errMsg string) failure.ClassifiedError {
	raw, err := q.client.Get(ctx, jobKey(queueName, id)).Result()
	if errors.Is(err, redis.Nil) {
		return q.recordAndWrap("fail", queueName, newReservationExpiredError(id))
	}
	if err != nil {
		return q.recordAndWrap("fail", queueName, newConnectionError(err.Error()))
	}

	env, err := unmarshalEnvelope(raw)
	if err != nil {
		return q.recordAndWrap("fail", queueName, newSerializationError(err.Error()))
	}

	failedRaw, err := failedEnvelope{Payload: env.Payload, Error: errMsg}.marshal()
	if err != nil {
		return q.recordAndWrap("fail", queueName, newSerializationError(err.Error()))
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey(queueName), 0, raw)
	pipe.LPush(ctx, failedKey(queueName), failedRaw)
	pipe.Del(ctx, jobKey(queueName, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return q.recordAndWrap("fail", queueName, newConnectionError(err.Error()))
	}

	return nil
}

// Schedule adds a payload to scheduled:Q keyed by its absolute due time.
// A separate promoter moves due entries into queue:Q; Schedule itself never
// touches queue:Q.
func (q *RedisJobQueue) Schedule(ctx context.Context, queueName string, payload []byte, delay time.Duration) (string, failure.ClassifiedError) {
	id := uuid.New().String()
	raw, err := envelope{ID: id, Payload: payload}.marshal()
	if err != nil {
		return "", q.recordAndWrap("schedule", queueName, newSerializationError(err.Error()))
	}

	executeAt := float64(time.Now().Add(delay).Unix())
	member := redis.Z{Score: executeAt, Member: raw}
	if err := q.client.ZAdd(ctx, scheduledKey(queueName), member).Err(); err != nil {
		return "", q.recordAndWrap("schedule", queueName, newConnectionError(err.Error()))
	}

	return id, nil
}

// PromoteDue moves every scheduled:Q entry whose score has elapsed into
// queue:Q, atomically per batch. Ordering within a batch is unspecified.
// Returns the number of entries promoted.
func (q *RedisJobQueue) PromoteDue(ctx context.Context, queueName string) (int, failure.ClassifiedError) {
	now := float64(time.Now().Unix())
	due, err := q.client.ZRangeByScore(ctx, scheduledKey(queueName), &redis.ZRangeBy{
		Min: "-inf",
		Max: formatScore(now),
	}).Result()
	if err != nil {
		return 0, q.recordAndWrap("promote", queueName, newConnectionError(err.Error()))
	}
	if len(due) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, raw := range due {
		pipe.ZRem(ctx, scheduledKey(queueName), raw)
		pipe.LPush(ctx, queueKey(queueName), raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, q.recordAndWrap("promote", queueName, newConnectionError(err.Error()))
	}

	return len(due), nil
}

// StartPromoter runs PromoteDue on every tick of pollInterval until ctx is
// cancelled. Intended to run as its own goroutine for the lifetime of the
// service.
func (q *RedisJobQueue) StartPromoter(ctx context.Context, queueName string, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.PromoteDue(ctx, queueName)
		}
	}
}

func (q *RedisJobQueue) recordAndWrap(action, queueName string, qErr *QueueError) *QueueError {
	if q.metadataSink != nil {
		q.metadataSink.RecordError(
			time.Now(),
			"queue",
			action,
			mapQueueErrorToMetadataCause(qErr),
			qErr.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrField, queueName)},
		)
	}
	return qErr
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
