package prescription

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusCanceled Status = "CANCELED"
	StatusExpired  Status = "EXPIRED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// Prescription is the ordonnance a doctor writes against an appointment:
// free-text treatments, the prescribed medication lines, and the doctor's
// signature line. Written only by the appointment's doctor; never edited
// after creation, only canceled.
type Prescription struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	Treatments  string   `gorm:"column:treatments;type:text;not null"`
	Medications []string `gorm:"column:medications;serializer:json"`
	Signature   string   `gorm:"column:signature;type:varchar(255)"`

	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	Status    Status     `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE';index"`
}

func (Prescription) TableName() string {
	return "clinic.prescriptions"
}

func (p *Prescription) IsExpired() bool {
	return p.ExpiresAt != nil && time.Now().After(*p.ExpiresAt)
}

type CreateCommand struct {
	Treatments  string
	Medications []string
	Signature   string
	ExpiresAt   *time.Time
}
