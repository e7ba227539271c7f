package message

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMessageNotFound = errors.New("message not found")

// Message is a direct message between two users of the clinic. Editing and
// deleting are sender-only operations; this guard is deliberately separate
// from the appointment delegation rules.
type Message struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SentAt time.Time `gorm:"autoCreateTime;index"`

	SenderID    uuid.UUID `gorm:"column:sender_id;type:uuid;not null;index"`
	RecipientID uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index"`

	Content  string     `gorm:"column:content;type:text;not null"`
	Read     bool       `gorm:"column:read;default:false;index"`
	EditedAt *time.Time `gorm:"column:edited_at"`
}

func (Message) TableName() string {
	return "clinic.messages"
}

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	Update(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Conversation returns the messages exchanged between two users, oldest
	// first.
	Conversation(ctx context.Context, userA, userB uuid.UUID, limit int) ([]*Message, error)
	// MarkConversationRead marks everything the sender sent to the recipient
	// as read.
	MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
