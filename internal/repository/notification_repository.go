package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia/dentavia/internal/domain/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.list(ctx, r.db.Where("user_id = ?", userID))
}

func (r *NotificationRepository) ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.list(ctx, r.db.Where("user_id = ? AND read = false", userID))
}

func (r *NotificationRepository) list(ctx context.Context, q *gorm.DB) ([]*notification.Notification, error) {
	var out []*notification.Notification
	err := q.WithContext(ctx).Order("created_at DESC").Limit(200).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("marking notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}
