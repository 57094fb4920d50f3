package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Service defines the internal chat operations.
type Service interface {
	StartConversation(ctx context.Context, actor user.Actor, otherUserID string) (*Conversation, error)
	ListConversations(ctx context.Context, actor user.Actor) ([]*Conversation, error)
	SendMessage(ctx context.Context, actor user.Actor, conversationID uuid.UUID, text string) (*Message, error)
	ListMessages(ctx context.Context, actor user.Actor, conversationID uuid.UUID) ([]*Message, error)
}

// UserGetter is the slice of the user repository needed to open a thread.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

type service struct {
	repo  Repository
	users UserGetter
	log   *zap.Logger
}

// NewService creates a new chat service.
func NewService(repo Repository, users UserGetter, log *zap.Logger) Service {
	return &service{repo: repo, users: users, log: log}
}

func (s *service) StartConversation(ctx context.Context, actor user.Actor, otherUserID string) (*Conversation, error) {
	if otherUserID == actor.ID {
		return nil, apperr.Validationf("cannot start a conversation with yourself")
	}
	if _, err := uuid.Parse(otherUserID); err != nil {
		return nil, apperr.Validationf("invalid user id")
	}
	other, err := s.users.GetUserByID(ctx, otherUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s not found", otherUserID)
		}
		return nil, apperr.Store("failed to load user", err)
	}

	pair := ParticipantPair(actor.ID, otherUserID)
	existing, err := s.repo.FindByParticipants(ctx, pair)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Store("failed to look up conversation", err)
	}

	conv := &Conversation{
		ID:           uuid.New(),
		Participants: pair,
		ParticipantUsernames: map[string]string{
			actor.ID:    actor.Username,
			otherUserID: other.Username,
		},
		UnreadCounts: map[string]int{actor.ID: 0, otherUserID: 0},
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, apperr.Store("failed to create conversation", err)
	}

	s.log.Info("conversation started", zap.String("id", conv.ID.String()))
	return conv, nil
}

func (s *service) ListConversations(ctx context.Context, actor user.Actor) ([]*Conversation, error) {
	conversations, err := s.repo.ListConversations(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store("failed to list conversations", err)
	}
	return conversations, nil
}

func (s *service) SendMessage(ctx context.Context, actor user.Actor, conversationID uuid.UUID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validationf("message text must not be empty")
	}

	conv, err := s.loadForParticipant(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       actor.ID,
		SenderName:     actor.Username,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.AppendMessage(ctx, msg, Preview(text)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("conversation %s not found", conversationID)
		}
		return nil, apperr.Store("failed to send message", err)
	}
	return msg, nil
}

func (s *service) ListMessages(ctx context.Context, actor user.Actor, conversationID uuid.UUID) ([]*Message, error) {
	conv, err := s.loadForParticipant(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, apperr.Store("failed to list messages", err)
	}

	// Viewing a thread clears the caller's unread counter.
	if conv.UnreadCounts[actor.ID] > 0 {
		if err := s.repo.ResetUnread(ctx, conv.ID, actor.ID); err != nil {
			s.log.Warn("failed to reset unread counter",
				zap.String("conversation", conv.ID.String()), zap.Error(err))
		}
	}
	return messages, nil
}

func (s *service) loadForParticipant(ctx context.Context, actor user.Actor, conversationID uuid.UUID) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("conversation %s not found", conversationID)
		}
		return nil, apperr.Store("failed to load conversation", err)
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, apperr.Permissionf("you are not a participant in this conversation")
	}
	return conv, nil
}
