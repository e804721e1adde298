// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the game action history is pushed to.
const DefaultQueueName = "blanks_actions"

// Connect creates a Redis client and checks that the server answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionQueue is a Redis list of GameActionRecords. Games push, the historian
// pops.
type ActionQueue struct {
	rdb   *redis.Client
	queue string
}

// NewActionQueue wraps rdb. An empty queue name uses DefaultQueueName.
func NewActionQueue(rdb *redis.Client, queue string) *ActionQueue {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionQueue{rdb: rdb, queue: queue}
}

// Name returns the Redis key of the queue.
func (q *ActionQueue) Name() string {
	return q.queue
}

// PublishGameAction serializes the record to JSON and pushes it to the tail of
// the queue.
func (q *ActionQueue) PublishGameAction(ctx context.Context, rec models.GameActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}

// PopGameAction blocks up to timeout for the next record. ok is false when the
// wait timed out with an empty queue.
func (q *ActionQueue) PopGameAction(ctx context.Context, timeout time.Duration) (rec models.GameActionRecord, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.queue).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	// res[0] is the queue name and res[1] the payload
	if len(res) < 2 {
		return rec, false, nil
	}
	rec, err = DecodeGameAction([]byte(res[1]))
	if err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// DecodeGameAction parses one queued record.
func DecodeGameAction(data []byte) (models.GameActionRecord, error) {
	var rec models.GameActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("invalid action record: %w", err)
	}
	return rec, nil
}
