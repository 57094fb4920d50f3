package notification

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Service defines notification business logic.
type Service interface {
	// NotifyAdmins fans one notification out to every admin except
	// excludeID. An empty excludeID addresses all admins.
	NotifyAdmins(ctx context.Context, excludeID, senderName, message, link string, typ Type) error
	List(ctx context.Context, actor user.Actor) ([]*Notification, error)
	MarkRead(ctx context.Context, actor user.Actor, id string) error
	MarkAllRead(ctx context.Context, actor user.Actor) error
}

// AdminLister is the slice of the user repository the fan-out needs.
type AdminLister interface {
	ListAdmins(ctx context.Context) ([]*user.User, error)
}

type service struct {
	repo  Repository
	users AdminLister
	log   *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, users AdminLister, log *zap.Logger) Service {
	return &service{repo: repo, users: users, log: log}
}

func (s *service) NotifyAdmins(ctx context.Context, excludeID, senderName, message, link string, typ Type) error {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return apperr.Store("failed to list notification recipients", err)
	}
	notes := FanOut(admins, excludeID, senderName, message, link, typ)
	if len(notes) == 0 {
		return nil
	}
	if err := s.repo.CreateBatch(ctx, notes); err != nil {
		return apperr.Store("failed to write notifications", err)
	}
	s.log.Debug("notifications fanned out",
		zap.Int("recipients", len(notes)),
		zap.String("type", string(typ)))
	return nil
}

func (s *service) List(ctx context.Context, actor user.Actor) ([]*Notification, error) {
	notes, err := s.repo.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store("failed to list notifications", err)
	}
	return notes, nil
}

func (s *service) MarkRead(ctx context.Context, actor user.Actor, id string) error {
	if err := s.repo.MarkRead(ctx, id, actor.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("notification %s not found", id)
		}
		return apperr.Store("failed to mark notification read", err)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor user.Actor) error {
	if err := s.repo.MarkAllRead(ctx, actor.ID); err != nil {
		return apperr.Store("failed to mark notifications read", err)
	}
	return nil
}
