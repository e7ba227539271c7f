package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPrescriptionCanceled = errors.New("prescription already canceled")
)
