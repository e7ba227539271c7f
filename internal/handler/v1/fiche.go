package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/service"
)

// 10 MiB cap on uploaded documents.
const maxDocumentSize = 10 << 20

type FicheHandler struct {
	fiches *service.FicheService
}

func NewFicheHandler(fiches *service.FicheService) *FicheHandler {
	return &FicheHandler{fiches: fiches}
}

func (h *FicheHandler) Get(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	fiche, err := h.fiches.GetFiche(c.Request.Context(), appointmentID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, fiche)
}

type saveFicheRequest struct {
	MedicalHistory     *string `json:"medical_history"`
	Allergies          *string `json:"allergies"`
	DentalObservations *string `json:"dental_observations"`
}

func (h *FicheHandler) Save(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req saveFicheRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.fiches.SaveFiche(c.Request.Context(), appointmentID, appointment.SaveFicheCommand{
		MedicalHistory:     req.MedicalHistory,
		Allergies:          req.Allergies,
		DentalObservations: req.DentalObservations,
	}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *FicheHandler) ListInterventions(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	interventions, err := h.fiches.ListInterventions(c.Request.Context(), appointmentID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, interventions)
}

type addInterventionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	ToothNumber *int    `json:"tooth_number"`
	Price       float64 `json:"price"`
}

func (h *FicheHandler) AddIntervention(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req addInterventionRequest
	if !bindJSON(c, &req) {
		return
	}

	iv, err := h.fiches.AddIntervention(c.Request.Context(), appointmentID, appointment.AddInterventionCommand{
		Name:        req.Name,
		Description: req.Description,
		ToothNumber: req.ToothNumber,
		Price:       req.Price,
	}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, iv)
}

func (h *FicheHandler) AttachDocument(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file exceeds 10MB limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read file")
		return
	}

	doc, err := h.fiches.AttachDocument(
		c.Request.Context(),
		appointmentID,
		appointment.DocumentAppointment,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		id,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, doc)
}

func (h *FicheHandler) DownloadDocument(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}
	documentID, ok := parseUUID(c, "documentID")
	if !ok {
		return
	}

	doc, data, err := h.fiches.DocumentBytes(c.Request.Context(), appointmentID, documentID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.Data(http.StatusOK, contentType, data)
}
