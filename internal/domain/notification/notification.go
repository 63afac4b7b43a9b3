package notification

import (
	"context"
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a notification
type Type string

const (
	TypeTaskAssigned Type = "task_assigned"
	TypeTaskDue      Type = "task_due"
	TypeStockLow     Type = "stock_low"
	TypeOrder        Type = "order"
	TypeSystem       Type = "system"
)

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeTaskAssigned, TypeTaskDue, TypeStockLow, TypeOrder, TypeSystem:
		return true
	}
	return false
}

// Notification is an in-app message for one user
type Notification struct {
	shared.BaseEntity
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_user,priority:1" json:"user_id"`
	Type    Type       `gorm:"type:varchar(20);not null" json:"type"`
	Title   string     `gorm:"type:varchar(255);not null" json:"title"`
	Message string     `gorm:"type:text" json:"message"`
	Link    string     `gorm:"type:varchar(500)" json:"link"`
	Read    bool       `gorm:"not null;default:false;index:idx_notification_user,priority:2" json:"read"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification
func New(userID uuid.UUID, typ Type, title, message, link string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.InvalidInput("user_id is required")
	}
	if !typ.IsValid() {
		return nil, shared.InvalidInput("invalid notification type %q", typ)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.InvalidInput("title is required")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    message,
		Link:       link,
	}, nil
}

// MarkRead flags the notification as read; reading twice keeps the first time
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	n.UpdatedAt = now
}

// Repository persists notifications; every call is scoped to one user
type Repository interface {
	FindForUser(ctx context.Context, userID, id uuid.UUID) (*Notification, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
