package appointment

import "errors"

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrSameDayConflict      = errors.New("patient already has an active appointment that day")
	ErrDelegationRevoked    = errors.New("delegation is no longer approved for this doctor")
	ErrInvalidStatus        = errors.New("invalid appointment status")
	ErrInvalidCaseType      = errors.New("invalid case type")
	ErrInvalidProcedure     = errors.New("invalid procedure type")
	ErrScheduledInPast      = errors.New("cannot schedule appointment in the past")
	ErrInterventionNotFound = errors.New("intervention not found")
	ErrDocumentNotFound     = errors.New("document not found")
)
