package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

type transcript struct {
	messages []*schema.Message
	expires  time.Time
}

// MemoryConversationRepository is a process-local transcript store, used
// when no Redis is configured. Like the Redis store, a transcript expires
// ttl after its last append; a zero ttl keeps it forever.
type MemoryConversationRepository struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	convs map[string]*transcript
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		ttl:   ttl,
		now:   time.Now,
		convs: make(map[string]*transcript),
	}
}

// live returns the transcript of id unless it has expired. r.mu must be held.
func (r *MemoryConversationRepository) live(conversationID string) *transcript {
	t, ok := r.convs[conversationID]
	if !ok || (r.ttl > 0 && r.now().After(t.expires)) {
		return nil
	}
	return t
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, conversationID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.live(conversationID)
	if t == nil {
		t = &transcript{}
		r.convs[conversationID] = t
	}
	t.messages = append(t.messages, messages...)
	t.expires = r.now().Add(r.ttl)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return r.LoadRecent(ctx, conversationID, -1)
}

// LoadRecent returns the last n messages; a negative n returns all.
func (r *MemoryConversationRepository) LoadRecent(_ context.Context, conversationID string, n int) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var msgs []*schema.Message
	if t := r.live(conversationID); t != nil {
		msgs = t.messages
	}
	if n >= 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return &model.ConversationHistory{
		ConversationID: conversationID,
		Messages:       append([]*schema.Message{}, msgs...),
	}, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, conversationID)
	return nil
}

func (r *MemoryConversationRepository) GetMessageCount(_ context.Context, conversationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t := r.live(conversationID); t != nil {
		return len(t.messages), nil
	}
	return 0, nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
