package appointment

import (
	"time"

	"github.com/google/uuid"
)

type CaseType string

const (
	CaseUrgent  CaseType = "URGENT"
	CaseControl CaseType = "CONTROL"
	CaseNormal  CaseType = "NORMAL"
)

func (t CaseType) IsValid() bool {
	switch t {
	case CaseUrgent, CaseControl, CaseNormal:
		return true
	}
	return false
}

type ProcedureType string

const (
	ProcedureDetartrage  ProcedureType = "DETARTRAGE"
	ProcedureSoin        ProcedureType = "SOIN"
	ProcedureExtraction  ProcedureType = "EXTRACTION"
	ProcedureBlanchiment ProcedureType = "BLANCHIMENT"
	ProcedureOrthodontie ProcedureType = "ORTHODONTIE"
)

func (t ProcedureType) IsValid() bool {
	switch t {
	case ProcedureDetartrage, ProcedureSoin, ProcedureExtraction, ProcedureBlanchiment, ProcedureOrthodontie:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the appointment still occupies the patient's
// calendar day for conflict purposes.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

// Label returns the French display label shown in notifications.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRejected:
		return "Rejeté"
	case StatusCanceled:
		return "Annulé"
	case StatusCompleted:
		return "Terminé"
	}
	return string(s)
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	// Stamped only when a secretary performed the last delegated mutation.
	SecretaryID *uuid.UUID `gorm:"column:secretary_id;type:uuid;index"`

	ScheduledAt   time.Time     `gorm:"column:scheduled_at;not null;index"`
	CaseType      CaseType      `gorm:"column:case_type;type:varchar(20);not null"`
	ProcedureType ProcedureType `gorm:"column:procedure_type;type:varchar(30);not null"`
	Status        Status        `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`
	Notes         string        `gorm:"column:notes;type:text"`

	// Fiche patient: clinical record fields tied to this appointment.
	MedicalHistory     string `gorm:"column:medical_history;type:text"`
	Allergies          string `gorm:"column:allergies;type:text"`
	DentalObservations string `gorm:"column:dental_observations;type:text"`
}

func (Appointment) TableName() string {
	return "clinic.appointments"
}

// Day returns the calendar day the appointment occupies, truncated in UTC.
// The same-day conflict rule is keyed on this value.
func (a *Appointment) Day() time.Time {
	y, m, d := a.ScheduledAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Intervention is a dental act recorded against an appointment. Created only
// by the appointment's doctor; the creation timestamp is immutable.
type Intervention struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`

	Name        string  `gorm:"column:name;type:varchar(255);not null"`
	Description string  `gorm:"column:description;type:text"`
	ToothNumber *int    `gorm:"column:tooth_number"`
	Price       float64 `gorm:"column:price"`
}

func (Intervention) TableName() string {
	return "clinic.interventions"
}

type DocumentKind string

const (
	// DocumentAppointment is attached to a single appointment's fiche.
	DocumentAppointment DocumentKind = "appointment"
	// DocumentPatient belongs to the patient's standing clinical file.
	DocumentPatient DocumentKind = "patient"
)

// Document holds opaque metadata for a stored file. The core never inspects
// the bytes; it only bookkeeps the path handed back by the blob store.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Kind          DocumentKind `gorm:"column:kind;type:varchar(20);not null"`
	AppointmentID *uuid.UUID   `gorm:"column:appointment_id;type:uuid;index"`
	PatientID     *uuid.UUID   `gorm:"column:patient_id;type:uuid;index"`

	Name        string `gorm:"column:name;type:varchar(255);not null"`
	Path        string `gorm:"column:path;type:varchar(500);not null"`
	ContentType string `gorm:"column:content_type;type:varchar(100)"`
	Size        int64  `gorm:"column:size"`
}

func (Document) TableName() string {
	return "clinic.documents"
}

type BookCommand struct {
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	ScheduledAt   time.Time
	CaseType      CaseType
	ProcedureType ProcedureType
	Notes         string
}

// BookUnregisteredCommand books for a patient who may not have an account
// yet; the identity is looked up by email and created on miss.
type BookUnregisteredCommand struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth *time.Time

	DoctorID      uuid.UUID
	ScheduledAt   time.Time
	CaseType      CaseType
	ProcedureType ProcedureType
	Notes         string
}

type SaveFicheCommand struct {
	MedicalHistory     *string
	Allergies          *string
	DentalObservations *string
}

type AddInterventionCommand struct {
	Name        string
	Description string
	ToothNumber *int
	Price       float64
}
