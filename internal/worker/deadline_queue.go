package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// DeadlineQueue tracks exam session deadlines in a Redis sorted set scored
// by unix expiry time. It is an optimization over the DB sweep: entries can
// be lost (Redis restart, failed Schedule) without correctness impact.
type DeadlineQueue struct {
	rdb *redis.Client
}

// NewDeadlineQueue creates a new DeadlineQueue.
func NewDeadlineQueue(rdb *redis.Client) *DeadlineQueue {
	return &DeadlineQueue{rdb: rdb}
}

// Schedule registers a session's deadline.
func (q *DeadlineQueue) Schedule(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	return q.rdb.ZAdd(ctx, config.CacheKey.SessionDeadlinesKey(), redis.Z{
		Score:  float64(at.Unix()),
		Member: sessionID.String(),
	}).Err()
}

// Cancel removes a session's deadline after submission.
func (q *DeadlineQueue) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	return q.rdb.ZRem(ctx, config.CacheKey.SessionDeadlinesKey(), sessionID.String()).Err()
}

// Due returns up to limit session ids whose deadline is at or before now.
// Entries stay in the set until Remove confirms they were handled.
func (q *DeadlineQueue) Due(ctx context.Context, now time.Time, limit int64) ([]uuid.UUID, error) {
	members, err := q.rdb.ZRangeByScore(ctx, config.CacheKey.SessionDeadlinesKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// Garbage entry; drop it so it never blocks the head.
			q.rdb.ZRem(ctx, config.CacheKey.SessionDeadlinesKey(), m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove drops handled sessions from the set.
func (q *DeadlineQueue) Remove(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, id.String())
	}
	return q.rdb.ZRem(ctx, config.CacheKey.SessionDeadlinesKey(), members...).Err()
}
