package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const conversationColumns = `id, participants, participant_usernames, last_message,
	last_message_sender_id, last_message_at, unread_counts, created_at`

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL chat repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) FindByParticipants(ctx context.Context, participants []string) (*Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE participants = $1`,
		pq.Array(participants))
	return scanConversation(row)
}

func (r *postgresRepo) CreateConversation(ctx context.Context, c *Conversation) error {
	usernames, err := json.Marshal(c.ParticipantUsernames)
	if err != nil {
		return fmt.Errorf("marshal participant usernames: %w", err)
	}
	counts, err := json.Marshal(c.UnreadCounts)
	if err != nil {
		return fmt.Errorf("marshal unread counts: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conversations
		  (id, participants, participant_usernames, unread_counts, last_message_at)
		VALUES ($1, $2, $3, $4, now())`,
		c.ID, pq.Array(c.Participants), usernames, counts)
	return err
}

func (r *postgresRepo) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	return scanConversation(row)
}

func (r *postgresRepo) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE $1 = ANY(participants)
		 ORDER BY last_message_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []*Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *postgresRepo) AppendMessage(ctx context.Context, msg *Message, preview string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the conversation row so concurrent sends serialize their
	// unread-counter updates.
	var participants pq.StringArray
	var rawCounts []byte
	err = tx.QueryRowContext(ctx,
		`SELECT participants, unread_counts FROM conversations WHERE id = $1 FOR UPDATE`,
		msg.ConversationID).Scan(&participants, &rawCounts)
	if err != nil {
		return err
	}
	counts := map[string]int{}
	if len(rawCounts) > 0 {
		if err := json.Unmarshal(rawCounts, &counts); err != nil {
			return fmt.Errorf("unmarshal unread counts: %w", err)
		}
	}
	for _, p := range participants {
		if p != msg.SenderID {
			counts[p]++
		}
	}
	newCounts, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal unread counts: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, text)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.SenderName, msg.Text); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message=$1, last_message_sender_id=$2, last_message_at=now(),
		    unread_counts=$3
		WHERE id=$4`,
		preview, msg.SenderID, newCounts, msg.ConversationID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sender_name, text, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID,
			&m.SenderName, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *postgresRepo) ResetUnread(ctx context.Context, conversationID uuid.UUID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversations
		SET unread_counts = jsonb_set(unread_counts, ARRAY[$2], '0')
		WHERE id = $1`, conversationID, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var c Conversation
	var participants pq.StringArray
	var usernames, counts []byte
	var lastMessage, lastSender sql.NullString
	if err := row.Scan(&c.ID, &participants, &usernames, &lastMessage,
		&lastSender, &c.LastMessageAt, &counts, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Participants = participants
	c.LastMessage = lastMessage.String
	c.LastMessageSenderID = lastSender.String
	c.ParticipantUsernames = map[string]string{}
	if len(usernames) > 0 {
		if err := json.Unmarshal(usernames, &c.ParticipantUsernames); err != nil {
			return nil, fmt.Errorf("unmarshal participant usernames: %w", err)
		}
	}
	c.UnreadCounts = map[string]int{}
	if len(counts) > 0 {
		if err := json.Unmarshal(counts, &c.UnreadCounts); err != nil {
			return nil, fmt.Errorf("unmarshal unread counts: %w", err)
		}
	}
	return &c, nil
}
