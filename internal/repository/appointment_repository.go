package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// uniq_appointments_patient_day_active fired: two active bookings
		// raced onto the same patient-day.
		return appointment.ErrSameDayConflict
	}
	if err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).Save(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appointment.ErrSameDayConflict
	}
	if err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

// UpdateDelegated writes a secretary's mutation. The delegation re-check and
// the write share one transaction so an approval revoked after the service
// guard ran cannot slip a write through.
func (r *AppointmentRepository) UpdateDelegated(ctx context.Context, a *appointment.Appointment, secretaryID, doctorID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.User{}).
			Where("id = ? AND role = ? AND assigned_doctor_id = ? AND delegation_status = ?",
				secretaryID, domain.RoleSecretary, doctorID, domain.DelegationApproved).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("re-checking delegation: %w", err)
		}
		if count == 0 {
			return appointment.ErrDelegationRevoked
		}

		a.SecretaryID = &secretaryID
		return tx.Save(a).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appointment.ErrSameDayConflict
	}
	return err
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, "patient_id = ?", patientID)
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, "doctor_id = ?", doctorID)
}

func (r *AppointmentRepository) list(ctx context.Context, cond string, arg any) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("scheduled_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) HasActiveSameDay(ctx context.Context, patientID uuid.UUID, day time.Time, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("patient_id = ?", patientID).
		Where("(scheduled_at AT TIME ZONE 'UTC')::date = ?", day.UTC().Format("2006-01-02")).
		Where("status IN ?", []appointment.Status{appointment.StatusPending, appointment.StatusAccepted})
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting same-day appointments: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) CreateIntervention(ctx context.Context, iv *appointment.Intervention) error {
	if err := r.db.WithContext(ctx).Create(iv).Error; err != nil {
		return fmt.Errorf("creating intervention: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListInterventions(ctx context.Context, appointmentID uuid.UUID) ([]*appointment.Intervention, error) {
	var out []*appointment.Intervention
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing interventions: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) CreateDocument(ctx context.Context, d *appointment.Document) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListDocuments(ctx context.Context, appointmentID uuid.UUID) ([]*appointment.Document, error) {
	var out []*appointment.Document
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return out, nil
}
