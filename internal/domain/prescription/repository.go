package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}
