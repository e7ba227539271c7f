package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewAppointment      Type = "NEW_APPOINTMENT"
	TypeAppointmentUpdated  Type = "APPOINTMENT_UPDATED"
	TypeAppointmentCanceled Type = "APPOINTMENT_CANCELED"
	TypeApplication         Type = "SECRETARY_APPLICATION"
	TypeApplicationResponse Type = "SECRETARY_APPLICATION_RESPONSE"
	TypeSecretaryRemoved    Type = "SECRETARY_REMOVED"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Message string    `gorm:"column:message;type:text;not null"`
	Type    Type      `gorm:"column:type;type:varchar(40);not null"`
	Link    string    `gorm:"column:link;type:varchar(255)"`
	Read    bool      `gorm:"column:read;default:false;index"`
}

func (Notification) TableName() string {
	return "clinic.notifications"
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	ListUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
