package chat

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party thread. Participants holds the pair of user
// IDs in sorted order so the same two users always map to one conversation.
type Conversation struct {
	ID                   uuid.UUID         `json:"id"`
	Participants         []string          `json:"participants"`
	ParticipantUsernames map[string]string `json:"participantUsernames"`
	LastMessage          string            `json:"lastMessage,omitempty"`
	LastMessageSenderID  string            `json:"lastMessageSenderId,omitempty"`
	LastMessageAt        time.Time         `json:"lastMessageTimestamp"`
	UnreadCounts         map[string]int    `json:"unreadCounts"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message inside a conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// previewLimit is the longest last-message preview stored on a conversation.
const previewLimit = 40

// Preview truncates text for the conversation list. Messages over the limit
// are cut to 37 characters plus an ellipsis.
func Preview(text string) string {
	if len(text) > previewLimit {
		return text[:37] + "..."
	}
	return text
}

// ParticipantPair returns the two user IDs in canonical sorted order.
func ParticipantPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}
