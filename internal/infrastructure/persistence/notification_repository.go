package persistence

import (
	"context"
	"time"

	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var notificationSpec = listSpec{
	search: []string{"title", "message"},
	columns: map[string]string{
		"type":       "type",
		"read":       "read",
		"created_at": "created_at",
	},
	sortable: NotificationSortFields,
}

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) forUser(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&notification.Notification{}).Where("user_id = ?", userID)
}

// FindForUser loads one notification of the user
func (r *GormNotificationRepository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.forUser(ctx, userID).First(&n, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "notification")
	}
	return &n, nil
}

// FindAllForUser lists notifications of the user, newest first by default
func (r *GormNotificationRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, error) {
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "created_at", "desc"
	}
	var out []notification.Notification
	q := notificationSpec.page(notificationSpec.where(r.forUser(ctx, userID), filter), filter)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountForUser counts notifications of the user matching the filter
func (r *GormNotificationRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var n int64
	err := notificationSpec.where(r.forUser(ctx, userID), filter).Count(&n).Error
	return n, err
}

// CountUnread counts unread notifications of the user
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.forUser(ctx, userID).Where("read = ?", false).Count(&n).Error
	return n, err
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return translateError(r.db.WithContext(ctx).Create(n).Error, "notification")
}

// Update writes every column of a notification
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	res := r.db.WithContext(ctx).Model(n).
		Where("user_id = ?", n.UserID).
		Select("*").Omit("created_at", clause.Associations).
		Updates(n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	res := r.forUser(ctx, userID).Where("read = ?", false).
		Updates(map[string]any{"read": true, "read_at": now, "updated_at": now})
	return res.RowsAffected, res.Error
}

// Delete removes a notification of the user
func (r *GormNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&notification.Notification{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("notification")
	}
	return nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
