package service

import (
	"errors"
	"strings"
)

var (
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	ErrNotADoctor    = errors.New("target user is not a doctor")
	ErrNotASecretary = errors.New("target user is not a secretary")

	// ErrAlreadyDelegated: the secretary already holds an approved
	// delegation to some doctor.
	ErrAlreadyDelegated = errors.New("secretary is already assigned to a doctor")

	// ErrNoPendingApplication: the doctor tried to decide an application
	// that does not target them or is not pending.
	ErrNoPendingApplication = errors.New("no pending application from this secretary")

	// ErrNotAssigned: the secretary is not currently assigned to the doctor.
	ErrNotAssigned = errors.New("secretary is not assigned to this doctor")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
