package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

// dateTimeLayout is the format used in notification messages.
const dateTimeLayout = "2006-01-02 15:04"

// BookingService creates appointments, enforcing actor eligibility and the
// one-active-appointment-per-patient-per-day rule.
type BookingService struct {
	appointments appointment.Repository
	users        UserRepository
	notifier     Notifier
	log          *zap.Logger
}

func NewBookingService(appointments appointment.Repository, users UserRepository, notifier Notifier, log *zap.Logger) *BookingService {
	return &BookingService{appointments: appointments, users: users, notifier: notifier, log: log}
}

func validateBooking(scheduledAt time.Time, caseType appointment.CaseType, procedure appointment.ProcedureType) error {
	if scheduledAt.Before(time.Now()) {
		return appointment.ErrScheduledInPast
	}
	if !caseType.IsValid() {
		return appointment.ErrInvalidCaseType
	}
	if !procedure.IsValid() {
		return appointment.ErrInvalidProcedure
	}
	return nil
}

// Book creates an appointment for a registered patient. Direct bookings are
// auto-confirmed: the initial status is ACCEPTED.
func (s *BookingService) Book(ctx context.Context, cmd *appointment.BookCommand, actorID uuid.UUID) (*appointment.Appointment, error) {
	if err := validateBooking(cmd.ScheduledAt, cmd.CaseType, cmd.ProcedureType); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := canBook(actor, cmd.PatientID, cmd.DoctorID); err != nil {
		return nil, err
	}

	patient, err := s.users.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.users.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrNotADoctor
	}

	a := &appointment.Appointment{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		ScheduledAt:   cmd.ScheduledAt,
		CaseType:      cmd.CaseType,
		ProcedureType: cmd.ProcedureType,
		Status:        appointment.StatusAccepted,
		Notes:         cmd.Notes,
	}
	stampSecretary(a, actor)

	if err := s.createWithConflictCheck(ctx, a); err != nil {
		return nil, err
	}

	when := a.ScheduledAt.Format(dateTimeLayout)
	s.notifier.Notify(doctor.ID,
		fmt.Sprintf("Nouveau rendez-vous confirmé avec le patient %s le %s", patient.FullName(), when),
		notification.TypeNewAppointment,
		"/doctor/appointments/"+a.ID.String(),
	)
	s.notifier.Notify(patient.ID,
		fmt.Sprintf("Votre rendez-vous avec le Dr. %s le %s a été confirmé.", doctor.FullName(), when),
		notification.TypeAppointmentUpdated,
		"/patient/appointments/"+a.ID.String(),
	)

	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID.String()),
		zap.String("patient_id", patient.ID.String()),
		zap.String("doctor_id", doctor.ID.String()),
	)
	return a, nil
}

// BookForUnregistered books on behalf of a walk-in or phone patient.
// Restricted to the doctor themself or a secretary with an approved
// delegation to that doctor. An existing identity with the same email is
// reused and refreshed; otherwise a minimal patient identity is created.
func (s *BookingService) BookForUnregistered(ctx context.Context, cmd *appointment.BookUnregisteredCommand, actorID uuid.UUID) (*appointment.Appointment, error) {
	if err := validateBooking(cmd.ScheduledAt, cmd.CaseType, cmd.ProcedureType); err != nil {
		return nil, err
	}
	var fields []string
	if cmd.Email == "" {
		fields = append(fields, "email is required")
	}
	if cmd.FirstName == "" || cmd.LastName == "" {
		fields = append(fields, "first and last name are required")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleDoctor:
		if actor.ID != cmd.DoctorID {
			return nil, ErrForbidden
		}
	case domain.RoleSecretary:
		if !actor.HasApprovedDelegationTo(cmd.DoctorID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	doctor, err := s.users.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrNotADoctor
	}

	patient, err := s.resolvePatient(ctx, cmd)
	if err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		ScheduledAt:   cmd.ScheduledAt,
		CaseType:      cmd.CaseType,
		ProcedureType: cmd.ProcedureType,
		Status:        appointment.StatusAccepted,
		Notes:         cmd.Notes,
	}
	stampSecretary(a, actor)

	if err := s.createWithConflictCheck(ctx, a); err != nil {
		return nil, err
	}

	when := a.ScheduledAt.Format(dateTimeLayout)
	s.notifier.Notify(doctor.ID,
		fmt.Sprintf("Nouveau rendez-vous confirmé avec le patient %s le %s", patient.FullName(), when),
		notification.TypeNewAppointment,
		"/doctor/appointments/"+a.ID.String(),
	)
	s.notifier.Notify(patient.ID,
		fmt.Sprintf("Nouveau rendez-vous créé avec le Dr. %s le %s.", doctor.FullName(), when),
		notification.TypeNewAppointment,
		"/patient/appointments/"+a.ID.String(),
	)

	return a, nil
}

// stampSecretary records which secretary created the appointment; the
// eligibility guard has already verified the approved delegation.
func stampSecretary(a *appointment.Appointment, actor *domain.User) {
	if actor.Role == domain.RoleSecretary {
		a.SecretaryID = &actor.ID
	}
}

// resolvePatient reuses an existing identity by email or registers a
// minimal patient profile.
func (s *BookingService) resolvePatient(ctx context.Context, cmd *appointment.BookUnregisteredCommand) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Only a patient identity may be reused; the email of a doctor or
		// secretary account is not up for grabs.
		if existing.Role != domain.RolePatient {
			return nil, ErrEmailTaken
		}
		existing.FirstName = cmd.FirstName
		existing.LastName = cmd.LastName
		existing.Phone = cmd.Phone
		if cmd.DateOfBirth != nil {
			existing.DateOfBirth = cmd.DateOfBirth
		}
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("refreshing patient identity: %w", err)
		}
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("looking up patient identity: %w", err)
	}

	patient := &domain.User{
		Email:       email,
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Phone:       cmd.Phone,
		DateOfBirth: cmd.DateOfBirth,
		Role:        domain.RolePatient,
		IsActive:    true,
	}
	if err := s.users.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("creating patient identity: %w", err)
	}
	return patient, nil
}

// createWithConflictCheck runs the same-day pre-check for a friendly error,
// then relies on the store's uniqueness guard to close the race between
// concurrent bookings.
func (s *BookingService) createWithConflictCheck(ctx context.Context, a *appointment.Appointment) error {
	conflict, err := s.appointments.HasActiveSameDay(ctx, a.PatientID, a.Day(), nil)
	if err != nil {
		return fmt.Errorf("checking same-day conflict: %w", err)
	}
	if conflict {
		return appointment.ErrSameDayConflict
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	return nil
}
