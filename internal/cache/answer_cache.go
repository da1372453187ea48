package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"notebase/internal/app"
)

// AnswerCache caches grounded chat answers per (store, normalized query).
// Entries for a store are dropped wholesale when its document set changes,
// since any document change can invalidate any answer.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}
}

func (c *AnswerCache) GetAnswer(ctx context.Context, storeID, query string) (*app.CachedAnswer, bool, error) {
	raw, err := c.client.Get(ctx, c.answerKey(storeID, query)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get answer failed: %w", err)
	}

	var answer app.CachedAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	return &answer, true, nil
}

func (c *AnswerCache) SetAnswer(ctx context.Context, storeID, query string, answer app.CachedAnswer) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.answerKey(storeID, query), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// InvalidateStore deletes every cached answer for a store. SCAN keeps the
// deletion incremental instead of blocking redis with KEYS.
func (c *AnswerCache) InvalidateStore(ctx context.Context, storeID string) error {
	pattern := fmt.Sprintf("chat:answer:%s:*", storeID)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan answers failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete answers failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *AnswerCache) answerKey(storeID, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("chat:answer:%s:%s", storeID, hex.EncodeToString(sum[:])[:32])
}
