package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia/dentavia/internal/domain/message"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, message.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return &m, nil
}

func (r *MessageRepository) Update(ctx context.Context, m *message.Message) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&message.Message{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return message.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) Conversation(ctx context.Context, userA, userB uuid.UUID, limit int) ([]*message.Message, error) {
	var out []*message.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("sent_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	return out, nil
}

func (r *MessageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND read = false", recipientID, senderID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("marking conversation read: %w", err)
	}
	return nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}
