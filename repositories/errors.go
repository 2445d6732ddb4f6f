package repositories

import (
	"errors"

	"OPDQueue/models"
)

var (
	ErrTokenNotFound      = errors.New("queue token not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrUserNotFound       = errors.New("user not found")
	// ErrResourceBusy is returned when an admission or update cannot obtain
	// its serialization lock within the retry budget. Safe to retry.
	ErrResourceBusy = errors.New("resource busy: could not acquire lock")
	// ErrNoValidFields is returned when an update request names none of the
	// mutable fields (status, stage, isCheckedIn).
	ErrNoValidFields = errors.New("no valid fields to update")
)

// Machine-readable rejection reasons surfaced to HTTP clients.
const (
	ReasonMissingFields     = "MissingFields"
	ReasonInvalidDoctor     = "InvalidDoctor"
	ReasonBreakTime         = "BreakTime"
	ReasonSlotFull          = "SlotFull"
	ReasonDuplicateActive   = "DuplicateActive"
	ReasonInvalidTransition = "InvalidTransition"
)

// RejectionError is a business-rule rejection: not a failure of the system,
// but a request the rules refuse. Admission and state-machine paths return it
// instead of writing anything. For DuplicateActive, Existing carries the
// booking already held so the client can route the patient to it.
type RejectionError struct {
	Reason   string
	Message  string
	Existing *models.QueueToken
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Reject builds a RejectionError without an attached booking.
func Reject(reason, message string) *RejectionError {
	return &RejectionError{Reason: reason, Message: message}
}
