package repository

import (
	"context"

	"github.com/emberapp/ember-backend/internal/db"

	"gorm.io/gorm"
)

// NotificationRepository provides data access methods for the
// Notification model.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository bound to the given DB connection.
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Create appends a notification row.
func (r *NotificationRepository) Create(ctx context.Context, n *db.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListForRecipient returns the recipient's most recent notifications.
func (r *NotificationRepository) ListForRecipient(
	ctx context.Context,
	recipientID uint64,
	limit int,
) ([]db.Notification, error) {
	var notifications []db.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a recipient's notification as read. Returns
// gorm.ErrRecordNotFound when the row is absent or owned by someone else.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
