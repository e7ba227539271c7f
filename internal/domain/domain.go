package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RoleSecretary Role = "secretary"
	RolePatient   Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleSecretary, RolePatient:
		return true
	}
	return false
}

// DelegationStatus tracks a secretary's standing with their chosen doctor.
//
// State transitions:
//
//	none     → pending  (secretary applies)
//	pending  → approved (doctor approves)
//	pending  → rejected (doctor rejects; doctor ref is cleared)
//	any      → none     (doctor removes the secretary)
//	none     → approved (doctor assigns directly)
type DelegationStatus string

const (
	DelegationNone     DelegationStatus = "none"
	DelegationPending  DelegationStatus = "pending"
	DelegationApproved DelegationStatus = "approved"
	DelegationRejected DelegationStatus = "rejected"
)

func (s DelegationStatus) IsValid() bool {
	switch s {
	case DelegationNone, DelegationPending, DelegationApproved, DelegationRejected:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Email        string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255)"`
	FirstName    string     `gorm:"column:first_name;type:varchar(100);not null"`
	LastName     string     `gorm:"column:last_name;type:varchar(100);not null"`
	Phone        string     `gorm:"column:phone;type:varchar(20)"`
	DateOfBirth  *time.Time `gorm:"column:date_of_birth"`
	Role         Role       `gorm:"column:role;type:varchar(30);not null;index"`

	// Delegation state; meaningful only for secretaries. A secretary has at
	// most one non-none delegation at a time.
	AssignedDoctorID *uuid.UUID       `gorm:"column:assigned_doctor_id;type:uuid;index"`
	DelegationStatus DelegationStatus `gorm:"column:delegation_status;type:varchar(20);not null;default:'none'"`
	CVPath           string           `gorm:"column:cv_path;type:varchar(500)"`

	IsActive bool `gorm:"column:is_active;default:true;index"`
}

func (User) TableName() string {
	return "auth.users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasApprovedDelegationTo reports whether this secretary currently holds an
// approved delegation to the given doctor.
func (u *User) HasApprovedDelegationTo(doctorID uuid.UUID) bool {
	return u.Role == RoleSecretary &&
		u.AssignedDoctorID != nil &&
		*u.AssignedDoctorID == doctorID &&
		u.DelegationStatus == DelegationApproved
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID  string `gorm:"column:request_id;type:varchar(50);index"`
	StatusCode int    `gorm:"column:status_code"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}
