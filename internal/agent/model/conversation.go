package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository stores the transcript of each conversation. The
// dialogue session itself is not persisted.
type ConversationRepository interface {
	// AddMessage appends messages to the transcript in a single write.
	AddMessage(ctx context.Context, conversationID string, messages ...*schema.Message) error

	// LoadHistory returns the whole transcript, oldest first.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// LoadRecent returns at most the last n messages, oldest first.
	LoadRecent(ctx context.Context, conversationID string, n int) (*ConversationHistory, error)

	ClearHistory(ctx context.Context, conversationID string) error

	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
