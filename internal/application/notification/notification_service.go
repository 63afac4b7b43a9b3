// Package notification serves the in-app notifications of each user.
package notification

import (
	"context"

	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SendInput is an admin-authored notification
type SendInput struct {
	UserID  uuid.UUID
	Type    notification.Type
	Title   string
	Message string
	Link    string
}

// Service reads and manages a user's notifications. A notification of
// another user behaves as missing.
type Service struct {
	repo notification.Repository
}

// NewService creates a new notification Service
func NewService(repo notification.Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[notification.Notification], error) {
	items, err := s.repo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[notification.Notification]{}, err
	}
	total, err := s.repo.CountForUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[notification.Notification]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UnreadCount counts the user's unread notifications
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flags one notification as read
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.MarkRead()
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the user and returns how
// many changed
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// Send creates a notification for any user
func (s *Service) Send(ctx context.Context, in SendInput) (*notification.Notification, error) {
	if in.Type == "" {
		in.Type = notification.TypeSystem
	}
	n, err := notification.New(in.UserID, in.Type, in.Title, in.Message, in.Link)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
