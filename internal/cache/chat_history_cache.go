package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"nlustudio/internal/model"
)

// ChatHistoryCache keeps the full message history of a chat session in redis
// for a short TTL. A dirty marker, set on every write, forces the next reader
// back to the database; a successful SetHistory clears it.
type ChatHistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewChatHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *ChatHistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ChatHistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ChatHistoryCache) GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	key := c.historyKey(sessionID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, nil
}

func (c *ChatHistoryCache) SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error {
	key := c.historyKey(sessionID)
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	if err := c.client.Del(ctx, c.dirtyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear dirty marker failed: %w", err)
	}
	return nil
}

func (c *ChatHistoryCache) DeleteHistory(ctx context.Context, sessionID uint) error {
	if err := c.client.Del(ctx, c.historyKey(sessionID), c.dirtyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *ChatHistoryCache) MarkDirty(ctx context.Context, sessionID uint) error {
	key := c.dirtyKey(sessionID)
	if err := c.client.Set(ctx, key, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *ChatHistoryCache) IsDirty(ctx context.Context, sessionID uint) (bool, error) {
	key := c.dirtyKey(sessionID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ChatHistoryCache) historyKey(sessionID uint) string {
	return fmt.Sprintf("chat:history:%d", sessionID)
}

func (c *ChatHistoryCache) dirtyKey(sessionID uint) string {
	return fmt.Sprintf("chat:history:dirty:%d", sessionID)
}
