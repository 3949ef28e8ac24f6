package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const chatHistoryKey = "chat_history"

// RedisHistory persists chat history in a Redis list, trimmed to the most
// recent ChatHistoryLimit entries. Newest entries sit at the head of the
// list; Recent reverses so callers see arrival order.
type RedisHistory struct {
	rdb     *redis.Client
	key     string
	limit   int64
	timeout time.Duration
}

// NewRedisHistory connects a history store to the Redis at addr.
func NewRedisHistory(addr string) *RedisHistory {
	return &RedisHistory{
		rdb:     redis.NewClient(&redis.Options{Addr: addr}),
		key:     chatHistoryKey,
		limit:   ChatHistoryLimit,
		timeout: 2 * time.Second,
	}
}

// Append implements ChatHistory.
func (r *RedisHistory) Append(msg ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.rdb.LPush(ctx, r.key, data).Err(); err != nil {
		return err
	}
	return r.rdb.LTrim(ctx, r.key, 0, r.limit-1).Err()
}

// Recent implements ChatHistory.
func (r *RedisHistory) Recent() ([]ChatMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	raw, err := r.rdb.LRange(ctx, r.key, 0, r.limit-1).Result()
	if err != nil {
		return nil, err
	}

	// LPUSH stores newest first; walk backwards for arrival order.
	out := make([]ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
