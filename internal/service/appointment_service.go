package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

// AppointmentService owns status transitions and reschedules. Every
// operation takes the acting user explicitly; guards run before any write
// and a delegated write re-validates the delegation at the store boundary.
type AppointmentService struct {
	appointments appointment.Repository
	users        UserRepository
	notifier     Notifier
	log          *zap.Logger
}

func NewAppointmentService(appointments appointment.Repository, users UserRepository, notifier Notifier, log *zap.Logger) *AppointmentService {
	return &AppointmentService{appointments: appointments, users: users, notifier: notifier, log: log}
}

// UpdateStatus applies a role-gated status transition. Patients may only
// cancel their own appointment; doctors may set any status on their own;
// secretaries may set any status under an approved delegation, which stamps
// them on the appointment.
func (s *AppointmentService) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, target appointment.Status, actorID uuid.UUID) (*appointment.Appointment, error) {
	if !target.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := canSetStatus(actor, a, target); err != nil {
		return nil, err
	}

	a.Status = target
	if err := s.saveFor(ctx, a, actor); err != nil {
		return nil, err
	}

	s.notifyStatusChanged(a, actor, target)

	s.log.Info("appointment status updated",
		zap.String("appointment_id", a.ID.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
		zap.String("status", string(target)),
	)
	return a, nil
}

// RescheduleTime moves an appointment to a new date-time. Allowed for the
// owning doctor or a secretary with an approved delegation; the same-day
// conflict rule is re-checked against the new day, excluding the
// appointment itself.
func (s *AppointmentService) RescheduleTime(ctx context.Context, appointmentID uuid.UUID, newTime time.Time, actorID uuid.UUID) (*appointment.Appointment, error) {
	if newTime.Before(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := canMutate(actor, a); err != nil {
		return nil, err
	}

	if err := s.checkSameDay(ctx, a.PatientID, newTime, a.ID); err != nil {
		return nil, err
	}

	a.ScheduledAt = newTime
	if err := s.saveFor(ctx, a, actor); err != nil {
		return nil, err
	}

	s.notifier.Notify(a.PatientID,
		fmt.Sprintf("Votre rendez-vous a été reprogrammé par %s pour le %s.",
			s.displayName(ctx, actor, a), newTime.Format("02/01/2006 à 15:04")),
		notification.TypeAppointmentUpdated,
		"/patient/appointments/"+a.ID.String(),
	)
	return a, nil
}

// RescheduleByPatient lets a patient move their own appointment and amend
// its notes. The status resets to PENDING so the doctor confirms the new
// slot.
func (s *AppointmentService) RescheduleByPatient(ctx context.Context, appointmentID uuid.UUID, newTime time.Time, notes string, actorID uuid.UUID) (*appointment.Appointment, error) {
	if newTime.Before(time.Now()) {
		return nil, appointment.ErrScheduledInPast
	}

	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RolePatient || actor.ID != a.PatientID {
		return nil, ErrForbidden
	}

	if err := s.checkSameDay(ctx, a.PatientID, newTime, a.ID); err != nil {
		return nil, err
	}

	a.ScheduledAt = newTime
	a.Notes = notes
	a.Status = appointment.StatusPending
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}

	s.notifier.Notify(a.DoctorID,
		fmt.Sprintf("Rendez-vous reprogrammé par le patient %s au %s",
			actor.FullName(), newTime.Format(dateTimeLayout)),
		notification.TypeAppointmentUpdated,
		"/doctor/appointments/"+a.ID.String(),
	)
	return a, nil
}

// Get returns a single appointment to an involved party: the patient, the
// doctor, or a secretary delegated to that doctor.
func (s *AppointmentService) Get(ctx context.Context, appointmentID, actorID uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID == a.PatientID {
		return a, nil
	}
	if err := canMutate(actor, a); err != nil {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *AppointmentService) ForPatient(ctx context.Context, actorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.appointments.ListByPatient(ctx, actorID)
}

func (s *AppointmentService) ForDoctor(ctx context.Context, actorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, actorID)
}

// ForSecretary returns the assigned doctor's agenda; only approved
// secretaries see it.
func (s *AppointmentService) ForSecretary(ctx context.Context, actorID uuid.UUID) ([]*appointment.Appointment, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleSecretary ||
		actor.AssignedDoctorID == nil ||
		actor.DelegationStatus != domain.DelegationApproved {
		return nil, ErrForbidden
	}
	return s.appointments.ListByDoctor(ctx, *actor.AssignedDoctorID)
}

// saveFor routes the write: secretary mutations go through the delegated
// path so the delegation is re-validated and the secretary stamped in the
// same transaction.
func (s *AppointmentService) saveFor(ctx context.Context, a *appointment.Appointment, actor *domain.User) error {
	if actor.Role == domain.RoleSecretary {
		err := s.appointments.UpdateDelegated(ctx, a, actor.ID, a.DoctorID)
		if errors.Is(err, appointment.ErrDelegationRevoked) {
			return ErrForbidden
		}
		return err
	}
	return s.appointments.Update(ctx, a)
}

func (s *AppointmentService) checkSameDay(ctx context.Context, patientID uuid.UUID, newTime time.Time, excludeID uuid.UUID) error {
	y, m, d := newTime.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	conflict, err := s.appointments.HasActiveSameDay(ctx, patientID, day, &excludeID)
	if err != nil {
		return fmt.Errorf("checking same-day conflict: %w", err)
	}
	if conflict {
		return appointment.ErrSameDayConflict
	}
	return nil
}

// notifyStatusChanged tells the opposite party, with the French status
// label. A patient cancellation notifies the doctor; any other transition
// notifies the patient, and a delegated transition also tells the doctor
// who acted.
func (s *AppointmentService) notifyStatusChanged(a *appointment.Appointment, actor *domain.User, target appointment.Status) {
	switch actor.Role {
	case domain.RolePatient:
		s.notifier.Notify(a.DoctorID,
			fmt.Sprintf("Rendez-vous annulé par %s", actor.FullName()),
			notification.TypeAppointmentCanceled,
			"/doctor/appointments/"+a.ID.String(),
		)
	case domain.RoleSecretary:
		s.notifier.Notify(a.DoctorID,
			fmt.Sprintf("Statut du rendez-vous modifié à %s par la secrétaire %s", target.Label(), actor.FullName()),
			notification.TypeAppointmentUpdated,
			"/doctor/appointments/"+a.ID.String(),
		)
		s.notifier.Notify(a.PatientID,
			fmt.Sprintf("Le statut de votre rendez-vous a été modifié à %s.", target.Label()),
			notification.TypeAppointmentUpdated,
			"/patient/appointments/"+a.ID.String(),
		)
	default:
		s.notifier.Notify(a.PatientID,
			fmt.Sprintf("Le statut de votre rendez-vous a été modifié à %s par le Dr. %s.", target.Label(), actor.LastName),
			notification.TypeAppointmentUpdated,
			"/patient/appointments/"+a.ID.String(),
		)
	}
}

// displayName renders the acting party for reschedule notifications.
func (s *AppointmentService) displayName(ctx context.Context, actor *domain.User, a *appointment.Appointment) string {
	if actor.Role == domain.RoleDoctor {
		return "Dr. " + actor.FullName()
	}
	doctor, err := s.users.GetByID(ctx, a.DoctorID)
	if err != nil {
		return actor.FullName() + " (secrétaire)"
	}
	return fmt.Sprintf("%s (secrétaire du Dr. %s)", actor.FullName(), doctor.FullName())
}
