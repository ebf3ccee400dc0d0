// Package repo holds transcript storage backends.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// RedisConversationRepository keeps each transcript in a Redis list whose
// TTL is refreshed on every append.
type RedisConversationRepository struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, logger: logx.Component("repo")}
}

func conversationKey(conversationID string) string {
	return fmt.Sprintf("salesbot:conversation:%s:messages", conversationID)
}

func (r *RedisConversationRepository) AddMessage(ctx context.Context, conversationID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]any, len(messages))
	for i, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		rows[i] = b
	}
	key := conversationKey(conversationID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, rows...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to append message")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return r.load(ctx, conversationID, 0)
}

func (r *RedisConversationRepository) LoadRecent(ctx context.Context, conversationID string, n int) (*model.ConversationHistory, error) {
	if n <= 0 {
		return &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}, nil
	}
	return r.load(ctx, conversationID, int64(-n))
}

// load reads the list from start to the end; a negative start counts from
// the tail.
func (r *RedisConversationRepository) load(ctx context.Context, conversationID string, start int64) (*model.ConversationHistory, error) {
	key := conversationKey(conversationID)
	rows, err := r.rdb.LRange(ctx, key, start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to load transcript")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message %d of %s: %w", i, conversationID, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	if err := r.rdb.Del(ctx, conversationKey(conversationID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	n, err := r.rdb.LLen(ctx, conversationKey(conversationID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
