package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain/notification"
)

// Notifier is the fire-and-forget collaborator the lifecycle services call
// once per affected party after a mutation commits. Dispatch failures are
// logged and never fail the primary operation.
type Notifier interface {
	Notify(recipient uuid.UUID, message string, t notification.Type, link string)
}

type NotificationService struct {
	repo    notification.Repository
	log     *zap.Logger
	sent    prometheus.Counter
	dropped prometheus.Counter
	entries chan *notification.Notification
	done    chan struct{}
}

func NewNotificationService(repo notification.Repository, log *zap.Logger, sent, dropped prometheus.Counter, bufferSize int) *NotificationService {
	svc := &NotificationService{
		repo:    repo,
		log:     log,
		sent:    sent,
		dropped: dropped,
		entries: make(chan *notification.Notification, bufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// Notify enqueues a notification for async persistence. If the buffer is
// full, the entry is dropped and a warning is emitted.
func (s *NotificationService) Notify(recipient uuid.UUID, message string, t notification.Type, link string) {
	n := &notification.Notification{
		UserID:  recipient,
		Message: message,
		Type:    t,
		Link:    link,
	}

	select {
	case s.entries <- n:
	default:
		s.dropped.Inc()
		s.log.Warn("notification buffer full, dropping entry",
			zap.String("recipient", recipient.String()),
			zap.String("type", string(t)),
		)
	}
}

func (s *NotificationService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("notification service shutdown timed out; some entries may be lost")
	}
}

func (s *NotificationService) worker() {
	defer close(s.done)
	for n := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, n); err != nil {
			s.log.Error("failed to persist notification",
				zap.Error(err),
				zap.String("recipient", n.UserID.String()),
			)
		} else {
			s.sent.Inc()
		}
		cancel()
	}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotificationService) ListUnreadForUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return s.repo.ListUnreadByUser(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
