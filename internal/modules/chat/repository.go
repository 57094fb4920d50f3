package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for conversations and messages.
type Repository interface {
	FindByParticipants(ctx context.Context, participants []string) (*Conversation, error)
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)

	// AppendMessage inserts the message and, in the same transaction, bumps
	// the conversation's last-message preview and the unread counters of
	// every participant except the sender.
	AppendMessage(ctx context.Context, msg *Message, preview string) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*Message, error)
	ResetUnread(ctx context.Context, conversationID uuid.UUID, userID string) error
}
