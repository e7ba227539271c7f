package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentavia/dentavia/internal/domain/prescription"
	"github.com/dentavia/dentavia/internal/service"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions}
}

type createPrescriptionRequest struct {
	Treatments  string     `json:"treatments" binding:"required"`
	Medications []string   `json:"medications"`
	Signature   string     `json:"signature"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.prescriptions.Create(c.Request.Context(), appointmentID, prescription.CreateCommand{
		Treatments:  req.Treatments,
		Medications: req.Medications,
		Signature:   req.Signature,
		ExpiresAt:   req.ExpiresAt,
	}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PrescriptionHandler) ListForAppointment(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	list, err := h.prescriptions.ForAppointment(c.Request.Context(), appointmentID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *PrescriptionHandler) ListMine(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	list, err := h.prescriptions.ForPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	prescriptionID, ok := parseUUID(c, "prescriptionID")
	if !ok {
		return
	}

	p, err := h.prescriptions.Get(c.Request.Context(), prescriptionID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PrescriptionHandler) Cancel(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	prescriptionID, ok := parseUUID(c, "prescriptionID")
	if !ok {
		return
	}

	p, err := h.prescriptions.Cancel(c.Request.Context(), prescriptionID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}
