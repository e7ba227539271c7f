package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/service"
	"github.com/dentavia/dentavia/pkg/metrics"
)

type AppointmentHandler struct {
	bookings     *service.BookingService
	appointments *service.AppointmentService
	collector    *metrics.Collector
}

func NewAppointmentHandler(bookings *service.BookingService, appointments *service.AppointmentService, collector *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, appointments: appointments, collector: collector}
}

type appointmentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	SecretaryID *string   `json:"secretary_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CaseType    string    `json:"case_type"`
	Procedure   string    `json:"procedure_type"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:          a.ID.String(),
		PatientID:   a.PatientID.String(),
		DoctorID:    a.DoctorID.String(),
		ScheduledAt: a.ScheduledAt,
		CaseType:    string(a.CaseType),
		Procedure:   string(a.ProcedureType),
		Status:      string(a.Status),
		StatusLabel: a.Status.Label(),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
	}
	if a.SecretaryID != nil {
		id := a.SecretaryID.String()
		resp.SecretaryID = &id
	}
	return resp
}

func toAppointmentResponses(list []*appointment.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type bookRequest struct {
	PatientID     uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID `json:"doctor_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	CaseType      string    `json:"case_type" binding:"required"`
	ProcedureType string    `json:"procedure_type" binding:"required"`
	Notes         string    `json:"notes"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.bookings.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		ScheduledAt:   req.ScheduledAt,
		CaseType:      appointment.CaseType(req.CaseType),
		ProcedureType: appointment.ProcedureType(req.ProcedureType),
		Notes:         req.Notes,
	}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.CaseType)).Inc()
	respondCreated(c, toAppointmentResponse(a))
}

type bookUnregisteredRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	DoctorID      uuid.UUID `json:"doctor_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	CaseType      string    `json:"case_type" binding:"required"`
	ProcedureType string    `json:"procedure_type" binding:"required"`
	Notes         string    `json:"notes"`
}

// BookUnregistered books on behalf of a walk-in or phone patient without an
// account.
func (h *AppointmentHandler) BookUnregistered(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var req bookUnregisteredRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.bookings.BookForUnregistered(c.Request.Context(), &appointment.BookUnregisteredCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		DateOfBirth:   req.DateOfBirth,
		DoctorID:      req.DoctorID,
		ScheduledAt:   req.ScheduledAt,
		CaseType:      appointment.CaseType(req.CaseType),
		ProcedureType: appointment.ProcedureType(req.ProcedureType),
		Notes:         req.Notes,
	}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.BookingsTotal.WithLabelValues(string(a.CaseType)).Inc()
	respondCreated(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	a, err := h.appointments.Get(c.Request.Context(), appointmentID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

// List routes on the caller's role: patients see their own appointments,
// doctors their agenda, secretaries their assigned doctor's agenda.
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		respondError(c, 401, "authentication required")
		return
	}

	var (
		list []*appointment.Appointment
		err  error
	)
	switch claims.Role {
	case domain.RolePatient:
		list, err = h.appointments.ForPatient(c.Request.Context(), claims.UserID)
	case domain.RoleDoctor:
		list, err = h.appointments.ForDoctor(c.Request.Context(), claims.UserID)
	case domain.RoleSecretary:
		list, err = h.appointments.ForSecretary(c.Request.Context(), claims.UserID)
	default:
		err = service.ErrForbidden
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponses(list))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.UpdateStatus(c.Request.Context(), appointmentID, appointment.Status(req.Status), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	claims := claimsFrom(c)
	h.collector.StatusTransitionsTotal.WithLabelValues(req.Status, string(claims.Role)).Inc()
	respondOK(c, toAppointmentResponse(a))
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.RescheduleTime(c.Request.Context(), appointmentID, req.ScheduledAt, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

type patientRescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes"`
}

func (h *AppointmentHandler) RescheduleByPatient(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	appointmentID, ok := parseUUID(c, "appointmentID")
	if !ok {
		return
	}

	var req patientRescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.RescheduleByPatient(c.Request.Context(), appointmentID, req.ScheduledAt, req.Notes, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}
