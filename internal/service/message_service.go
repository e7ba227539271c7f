package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain/message"
)

const conversationLimit = 200

// MessageService handles direct messages between users. Anyone may write to
// anyone; editing and deleting are sender-only.
type MessageService struct {
	messages message.Repository
	users    UserRepository
	log      *zap.Logger
}

func NewMessageService(messages message.Repository, users UserRepository, log *zap.Logger) *MessageService {
	return &MessageService{messages: messages, users: users, log: log}
}

func (s *MessageService) Send(ctx context.Context, recipientID uuid.UUID, content string, actorID uuid.UUID) (*message.Message, error) {
	if content == "" {
		return nil, &ValidationError{Fields: []string{"content"}}
	}
	if recipientID == actorID {
		return nil, &ValidationError{Fields: []string{"recipient_id"}}
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	m := &message.Message{
		SenderID:    actorID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.log.Info("message sent",
		zap.String("sender_id", actorID.String()),
		zap.String("recipient_id", recipientID.String()),
	)
	return m, nil
}

// Conversation returns the exchange between the actor and another user and
// marks the other side's messages as read.
func (s *MessageService) Conversation(ctx context.Context, otherID, actorID uuid.UUID) ([]*message.Message, error) {
	msgs, err := s.messages.Conversation(ctx, actorID, otherID, conversationLimit)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkConversationRead(ctx, actorID, otherID); err != nil {
		s.log.Warn("failed to mark conversation read", zap.Error(err))
	}
	return msgs, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, actorID uuid.UUID) (int64, error) {
	return s.messages.CountUnread(ctx, actorID)
}

// Edit rewrites a message's content. Sender-only; the edit timestamp is
// kept so the recipient can tell.
func (s *MessageService) Edit(ctx context.Context, messageID uuid.UUID, content string, actorID uuid.UUID) (*message.Message, error) {
	if content == "" {
		return nil, &ValidationError{Fields: []string{"content"}}
	}
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := canModifyMessage(actor, m); err != nil {
		return nil, err
	}

	now := time.Now()
	m.Content = content
	m.EditedAt = &now
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a message. Sender-only; the recipient cannot erase what
// was sent to them.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := canModifyMessage(actor, m); err != nil {
		return err
	}
	return s.messages.Delete(ctx, m.ID)
}
