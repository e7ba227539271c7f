package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/notification"
	"github.com/dentavia/dentavia/internal/domain/prescription"
)

// PrescriptionService writes and reads ordonnances. Creation and
// cancellation are reserved to the appointment's doctor; reading follows
// the fiche access rule.
type PrescriptionService struct {
	prescriptions prescription.Repository
	appointments  appointment.Repository
	users         UserRepository
	notifier      Notifier
	log           *zap.Logger
}

func NewPrescriptionService(prescriptions prescription.Repository, appointments appointment.Repository, users UserRepository, notifier Notifier, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		appointments:  appointments,
		users:         users,
		notifier:      notifier,
		log:           log,
	}
}

func (s *PrescriptionService) Create(ctx context.Context, appointmentID uuid.UUID, cmd prescription.CreateCommand, actorID uuid.UUID) (*prescription.Prescription, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if err := canWritePrescription(actor, a); err != nil {
		return nil, err
	}
	if cmd.Treatments == "" {
		return nil, &ValidationError{Fields: []string{"treatments"}}
	}

	p := &prescription.Prescription{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Treatments:    cmd.Treatments,
		Medications:   cmd.Medications,
		Signature:     cmd.Signature,
		ExpiresAt:     cmd.ExpiresAt,
		Status:        prescription.StatusActive,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}

	s.notifier.Notify(a.PatientID,
		fmt.Sprintf("Une ordonnance a été établie par le Dr. %s.", actor.LastName),
		notification.TypeAppointmentUpdated,
		"/patient/appointments/"+a.ID.String(),
	)

	s.log.Info("prescription created",
		zap.String("prescription_id", p.ID.String()),
		zap.String("appointment_id", a.ID.String()),
	)
	return p, nil
}

func (s *PrescriptionService) Get(ctx context.Context, prescriptionID, actorID uuid.UUID) (*prescription.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	a, actor, err := s.load(ctx, p.AppointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}
	return deriveStatus(p), nil
}

func (s *PrescriptionService) ForAppointment(ctx context.Context, appointmentID, actorID uuid.UUID) ([]*prescription.Prescription, error) {
	a, actor, err := s.load(ctx, appointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAuthorizedForFiche(actor, a) {
		return nil, ErrForbidden
	}
	list, err := s.prescriptions.ListByAppointment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return deriveStatuses(list), nil
}

// ForPatient returns the actor's own prescriptions.
func (s *PrescriptionService) ForPatient(ctx context.Context, actorID uuid.UUID) ([]*prescription.Prescription, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RolePatient {
		return nil, ErrForbidden
	}
	list, err := s.prescriptions.ListByPatient(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return deriveStatuses(list), nil
}

// Cancel voids an ordonnance. Only the signing doctor may do it; an
// ordonnance is never edited after the fact.
func (s *PrescriptionService) Cancel(ctx context.Context, prescriptionID, actorID uuid.UUID) (*prescription.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	a, actor, err := s.load(ctx, p.AppointmentID, actorID)
	if err != nil {
		return nil, err
	}
	if err := canWritePrescription(actor, a); err != nil {
		return nil, err
	}
	if p.Status == prescription.StatusCanceled {
		return nil, prescription.ErrPrescriptionCanceled
	}

	p.Status = prescription.StatusCanceled
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}

	s.notifier.Notify(a.PatientID,
		fmt.Sprintf("L'ordonnance du Dr. %s a été annulée.", actor.LastName),
		notification.TypeAppointmentUpdated,
		"/patient/appointments/"+a.ID.String(),
	)
	return p, nil
}

// Expiry is a read-time property of ExpiresAt; nothing rewrites the stored
// status when an ordonnance lapses.
func deriveStatus(p *prescription.Prescription) *prescription.Prescription {
	if p.Status == prescription.StatusActive && p.IsExpired() {
		p.Status = prescription.StatusExpired
	}
	return p
}

func deriveStatuses(list []*prescription.Prescription) []*prescription.Prescription {
	for _, p := range list {
		deriveStatus(p)
	}
	return list
}

func (s *PrescriptionService) load(ctx context.Context, appointmentID, actorID uuid.UUID) (*appointment.Appointment, *domain.User, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return a, actor, nil
}
