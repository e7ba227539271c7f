package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dentavia/dentavia/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var (
		list any
		err  error
	)
	if c.Query("unread") == "true" {
		list, err = h.notifications.ListUnreadForUser(c.Request.Context(), id)
	} else {
		list, err = h.notifications.ListForUser(c.Request.Context(), id)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	notificationID, ok := parseUUID(c, "notificationID")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), notificationID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"read": true})
}
