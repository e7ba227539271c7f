package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/service"
	"github.com/dentavia/dentavia/pkg/metrics"
)

type DelegationHandler struct {
	delegations *service.DelegationService
	collector   *metrics.Collector
}

func NewDelegationHandler(delegations *service.DelegationService, collector *metrics.Collector) *DelegationHandler {
	return &DelegationHandler{delegations: delegations, collector: collector}
}

type applyRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
}

// Apply lets a secretary apply to work under a doctor.
func (h *DelegationHandler) Apply(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var req applyRequest
	if !bindJSON(c, &req) {
		return
	}

	secretary, err := h.delegations.Apply(c.Request.Context(), id, req.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(secretary))
}

type decideRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// Decide approves or rejects a pending application.
func (h *DelegationHandler) Decide(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	secretaryID, ok := parseUUID(c, "secretaryID")
	if !ok {
		return
	}

	var req decideRequest
	if !bindJSON(c, &req) {
		return
	}

	secretary, err := h.delegations.Decide(c.Request.Context(), id, secretaryID, domain.DelegationStatus(req.Outcome))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DelegationDecisionsTotal.WithLabelValues(req.Outcome).Inc()
	respondOK(c, toUserResponse(secretary))
}

// Remove revokes a secretary's delegation.
func (h *DelegationHandler) Remove(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	secretaryID, ok := parseUUID(c, "secretaryID")
	if !ok {
		return
	}

	secretary, err := h.delegations.Remove(c.Request.Context(), id, secretaryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DelegationDecisionsTotal.WithLabelValues("removed").Inc()
	respondOK(c, toUserResponse(secretary))
}

// AssignDirect assigns a free secretary without an application round-trip.
func (h *DelegationHandler) AssignDirect(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	secretaryID, ok := parseUUID(c, "secretaryID")
	if !ok {
		return
	}

	secretary, err := h.delegations.AssignDirect(c.Request.Context(), id, secretaryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DelegationDecisionsTotal.WithLabelValues("assigned").Inc()
	respondCreated(c, toUserResponse(secretary))
}

func (h *DelegationHandler) PendingApplications(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	secretaries, err := h.delegations.PendingApplications(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponses(secretaries))
}

func (h *DelegationHandler) AssignedSecretaries(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	secretaries, err := h.delegations.AssignedSecretaries(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponses(secretaries))
}

func (h *DelegationHandler) AssignedDoctor(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	doctor, err := h.delegations.AssignedDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponse(doctor))
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
