package repo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisConversationRepository(rdb, ttl), mr
}

func repos(t *testing.T) map[string]model.ConversationRepository {
	r, _ := newRedisRepo(t, time.Minute)
	return map[string]model.ConversationRepository{
		"redis":  r,
		"memory": NewMemoryConversationRepository(time.Minute),
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	for name, r := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, r.AddMessage(ctx, "c1",
				schema.UserMessage("Сколько стоит?"),
				schema.AssistantMessage("От 4 900 ₸ в месяц.", nil),
			))
			require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("А демо?")))
			require.NoError(t, r.AddMessage(ctx, "c1"))
			require.NoError(t, r.AddMessage(ctx, "c2", schema.UserMessage("Привет")))

			h, err := r.LoadHistory(ctx, "c1")
			require.NoError(t, err)
			require.Len(t, h.Messages, 3)
			assert.Equal(t, "c1", h.ConversationID)
			assert.Equal(t, schema.User, h.Messages[0].Role)
			assert.Equal(t, schema.Assistant, h.Messages[1].Role)
			assert.Equal(t, "А демо?", h.Messages[2].Content)

			recent, err := r.LoadRecent(ctx, "c1", 2)
			require.NoError(t, err)
			require.Len(t, recent.Messages, 2)
			assert.Equal(t, "От 4 900 ₸ в месяц.", recent.Messages[0].Content)

			none, err := r.LoadRecent(ctx, "c1", 0)
			require.NoError(t, err)
			assert.Empty(t, none.Messages)

			n, err := r.GetMessageCount(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			require.NoError(t, r.ClearHistory(ctx, "c1"))
			h, err = r.LoadHistory(ctx, "c1")
			require.NoError(t, err)
			assert.Empty(t, h.Messages)

			n, err = r.GetMessageCount(ctx, "c2")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestRedisRefreshesTTL(t *testing.T) {
	r, mr := newRedisRepo(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("раз")))
	mr.FastForward(20 * time.Minute)
	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("два")))
	assert.Equal(t, 30*time.Minute, mr.TTL(conversationKey("c1")))

	mr.FastForward(31 * time.Minute)
	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryExpiresIdleTranscripts(t *testing.T) {
	r := NewMemoryConversationRepository(30 * time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("раз")))
	now = now.Add(20 * time.Minute)
	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("два")))

	now = now.Add(29 * time.Minute)
	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	now = now.Add(2 * time.Minute)
	h, err := r.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, h.Messages)

	// a new append starts a fresh transcript
	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("три")))
	h, err = r.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, "три", h.Messages[0].Content)
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	r, mr := newRedisRepo(t, 0)
	mr.Close()

	err := r.AddMessage(context.Background(), "c1", schema.UserMessage("x"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err, 0))

	_, err = r.LoadHistory(context.Background(), "c1")
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err, 0))
}

func TestRedisRejectsCorruptRows(t *testing.T) {
	r, mr := newRedisRepo(t, 0)
	_, err := mr.RPush(conversationKey("c1"), "{not json")
	require.NoError(t, err)

	_, err = r.LoadHistory(context.Background(), "c1")
	assert.ErrorContains(t, err, "unmarshal message 0 of c1")
}
