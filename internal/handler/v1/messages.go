package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Content     string    `json:"content" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.messages.Send(c.Request.Context(), req.RecipientID, req.Content, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, m)
}

func (h *MessageHandler) Conversation(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	otherID, ok := parseUUID(c, "userID")
	if !ok {
		return
	}

	msgs, err := h.messages.Conversation(c.Request.Context(), otherID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, msgs)
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	count, err := h.messages.UnreadCount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"unread": count})
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *MessageHandler) Edit(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	messageID, ok := parseUUID(c, "messageID")
	if !ok {
		return
	}

	var req editMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.messages.Edit(c.Request.Context(), messageID, req.Content, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	messageID, ok := parseUUID(c, "messageID")
	if !ok {
		return
	}

	if err := h.messages.Delete(c.Request.Context(), messageID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
