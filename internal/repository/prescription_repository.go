package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia/dentavia/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("creating prescription: %w", err)
	}
	return nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("updating prescription: %w", err)
	}
	return nil
}

func (r *PrescriptionRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*prescription.Prescription, error) {
	return r.list(ctx, r.db.Where("appointment_id = ?", appointmentID))
}

func (r *PrescriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	return r.list(ctx, r.db.Where("patient_id = ?", patientID))
}

func (r *PrescriptionRepository) list(ctx context.Context, q *gorm.DB) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	err := q.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return out, nil
}
