package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment. The store carries a uniqueness
	// guard on (patient, day) for active statuses; a violation surfaces as
	// ErrSameDayConflict even when two bookings race past the in-memory
	// pre-check.
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Update saves a mutated appointment. Same conflict mapping as Create.
	Update(ctx context.Context, a *Appointment) error

	// UpdateDelegated saves a mutation performed by a secretary. The write
	// and the delegation re-check happen in one transaction: if the
	// secretary's delegation to doctorID is no longer approved at commit
	// time, nothing is written and ErrDelegationRevoked is returned. On
	// success the secretary is stamped on the appointment.
	UpdateDelegated(ctx context.Context, a *Appointment, secretaryID, doctorID uuid.UUID) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// HasActiveSameDay reports whether the patient already has a PENDING or
	// ACCEPTED appointment on the given calendar day, excluding excludeID
	// when non-nil (reschedules exclude themselves).
	HasActiveSameDay(ctx context.Context, patientID uuid.UUID, day time.Time, excludeID *uuid.UUID) (bool, error)

	CreateIntervention(ctx context.Context, iv *Intervention) error
	ListInterventions(ctx context.Context, appointmentID uuid.UUID) ([]*Intervention, error)

	CreateDocument(ctx context.Context, d *Document) error
	ListDocuments(ctx context.Context, appointmentID uuid.UUID) ([]*Document, error)
}
