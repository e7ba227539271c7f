package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/notification"
)

type UserRepository interface {
	// Create persists a new identity.
	Create(ctx context.Context, u *domain.User) error

	// GetByID returns domain.ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns domain.ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	Update(ctx context.Context, u *domain.User) error

	// ListSecretariesByDoctor returns secretaries whose delegation targets
	// the doctor and is in the given status.
	ListSecretariesByDoctor(ctx context.Context, doctorID uuid.UUID, status domain.DelegationStatus) ([]*domain.User, error)
}

// DelegationService runs the secretary→doctor assignment state machine.
type DelegationService struct {
	users    UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewDelegationService(users UserRepository, notifier Notifier, log *zap.Logger) *DelegationService {
	return &DelegationService{users: users, notifier: notifier, log: log}
}

// Apply records a secretary's application to work with a doctor, moving the
// delegation to pending. Fails if the secretary already holds an approved
// delegation.
func (s *DelegationService) Apply(ctx context.Context, actorID, doctorID uuid.UUID) (*domain.User, error) {
	secretary, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if secretary.Role != domain.RoleSecretary {
		return nil, ErrForbidden
	}
	if secretary.AssignedDoctorID != nil && secretary.DelegationStatus == domain.DelegationApproved {
		return nil, ErrAlreadyDelegated
	}

	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrNotADoctor
	}

	secretary.AssignedDoctorID = &doctor.ID
	secretary.DelegationStatus = domain.DelegationPending
	if err := s.users.Update(ctx, secretary); err != nil {
		return nil, fmt.Errorf("saving application: %w", err)
	}

	s.notifier.Notify(doctor.ID,
		fmt.Sprintf("La secrétaire %s a postulé pour travailler avec vous", secretary.FullName()),
		notification.TypeApplication,
		"/doctor/secretary-applications",
	)

	s.log.Info("secretary applied",
		zap.String("secretary_id", secretary.ID.String()),
		zap.String("doctor_id", doctor.ID.String()),
	)
	return secretary, nil
}

// Decide resolves a pending application. Only the targeted doctor may
// decide, and only while the application is pending. Rejection clears the
// doctor reference.
func (s *DelegationService) Decide(ctx context.Context, actorID, secretaryID uuid.UUID, outcome domain.DelegationStatus) (*domain.User, error) {
	if outcome != domain.DelegationApproved && outcome != domain.DelegationRejected {
		return nil, &ValidationError{Fields: []string{"outcome must be approved or rejected"}}
	}

	doctor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}

	secretary, err := s.users.GetByID(ctx, secretaryID)
	if err != nil {
		return nil, err
	}
	if secretary.AssignedDoctorID == nil ||
		*secretary.AssignedDoctorID != doctor.ID ||
		secretary.DelegationStatus != domain.DelegationPending {
		return nil, ErrNoPendingApplication
	}

	secretary.DelegationStatus = outcome
	if outcome == domain.DelegationRejected {
		secretary.AssignedDoctorID = nil
	}
	if err := s.users.Update(ctx, secretary); err != nil {
		return nil, fmt.Errorf("saving decision: %w", err)
	}

	verdict := "approuvé"
	if outcome == domain.DelegationRejected {
		verdict = "rejeté"
	}
	s.notifier.Notify(secretary.ID,
		fmt.Sprintf("Le Dr. %s a %s votre candidature", doctor.FullName(), verdict),
		notification.TypeApplicationResponse,
		"/secretary/dashboard",
	)

	s.log.Info("secretary application decided",
		zap.String("secretary_id", secretary.ID.String()),
		zap.String("doctor_id", doctor.ID.String()),
		zap.String("outcome", string(outcome)),
	)
	return secretary, nil
}

// Remove detaches a secretary from the doctor's team, resetting the
// delegation to none.
func (s *DelegationService) Remove(ctx context.Context, actorID, secretaryID uuid.UUID) (*domain.User, error) {
	doctor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}

	secretary, err := s.users.GetByID(ctx, secretaryID)
	if err != nil {
		return nil, err
	}
	if secretary.AssignedDoctorID == nil || *secretary.AssignedDoctorID != doctor.ID {
		return nil, ErrNotAssigned
	}

	secretary.AssignedDoctorID = nil
	secretary.DelegationStatus = domain.DelegationNone
	if err := s.users.Update(ctx, secretary); err != nil {
		return nil, fmt.Errorf("removing secretary: %w", err)
	}

	s.notifier.Notify(secretary.ID,
		fmt.Sprintf("Le Dr. %s vous a retiré de son équipe", doctor.FullName()),
		notification.TypeSecretaryRemoved,
		"/secretary/dashboard",
	)

	return secretary, nil
}

// AssignDirect is the doctor-initiated shortcut that approves a secretary
// without an application round-trip.
func (s *DelegationService) AssignDirect(ctx context.Context, actorID, secretaryID uuid.UUID) (*domain.User, error) {
	doctor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}

	secretary, err := s.users.GetByID(ctx, secretaryID)
	if err != nil {
		return nil, err
	}
	if secretary.Role != domain.RoleSecretary {
		return nil, ErrNotASecretary
	}
	if secretary.AssignedDoctorID != nil && secretary.DelegationStatus == domain.DelegationApproved {
		return nil, ErrAlreadyDelegated
	}

	secretary.AssignedDoctorID = &doctor.ID
	secretary.DelegationStatus = domain.DelegationApproved
	if err := s.users.Update(ctx, secretary); err != nil {
		return nil, fmt.Errorf("assigning secretary: %w", err)
	}

	s.notifier.Notify(secretary.ID,
		fmt.Sprintf("Le Dr. %s vous a désigné comme secrétaire", doctor.FullName()),
		notification.TypeApplicationResponse,
		"/secretary/dashboard",
	)

	return secretary, nil
}

// PendingApplications lists secretaries awaiting the doctor's decision.
func (s *DelegationService) PendingApplications(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error) {
	doctor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}
	return s.users.ListSecretariesByDoctor(ctx, doctor.ID, domain.DelegationPending)
}

// AssignedSecretaries lists the doctor's approved secretaries.
func (s *DelegationService) AssignedSecretaries(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error) {
	doctor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, ErrForbidden
	}
	return s.users.ListSecretariesByDoctor(ctx, doctor.ID, domain.DelegationApproved)
}

// AssignedDoctor resolves the doctor a secretary currently belongs to.
func (s *DelegationService) AssignedDoctor(ctx context.Context, actorID uuid.UUID) (*domain.User, error) {
	secretary, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if secretary.Role != domain.RoleSecretary {
		return nil, ErrForbidden
	}
	if secretary.AssignedDoctorID == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.users.GetByID(ctx, *secretary.AssignedDoctorID)
}
