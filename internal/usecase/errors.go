package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies a failure so callers can render it without knowing every code
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindState          ErrorKind = "state"
	KindStorage        ErrorKind = "storage"
	KindAuthentication ErrorKind = "authentication"
	KindForbidden      ErrorKind = "forbidden"
)

// Error is the failure returned by every usecase operation.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

// KindOf returns the kind of err, or KindStorage for errors this package did not produce
func KindOf(err error) ErrorKind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindStorage
}

var (
	// Validation
	ErrValidation         = newError(KindValidation, "validation_failed", "validation failed")
	ErrInvalidDate        = newError(KindValidation, "invalid_date", "invalid date format, use YYYY-MM-DD")
	ErrInvalidTime        = newError(KindValidation, "invalid_time", "invalid time format, use HH:MM")
	ErrTimeOffGrid        = newError(KindValidation, "time_off_grid", "time is not a bookable half-hour slot between 08:00 and 17:00")
	ErrPastDateTime       = newError(KindValidation, "past_date_time", "cannot book an appointment in the past")
	ErrInvalidRole        = newError(KindValidation, "invalid_role", "role must be Patient or Administrator")
	ErrAmbiguousFilter    = newError(KindValidation, "ambiguous_filter", "only one physician filter may be supplied")
	ErrInvalidOutcome     = newError(KindValidation, "invalid_outcome", "attendance outcome must be Attended or NoShow")
	ErrDuplicateQuestions = newError(KindValidation, "duplicate_security_questions", "security questions must be distinct")
	ErrNotPatient         = newError(KindValidation, "not_patient", "appointments can only be booked for patients")

	// Conflict
	ErrDuplicateEmail          = newError(KindConflict, "duplicate_email", "email already registered")
	ErrDuplicateNationalID     = newError(KindConflict, "duplicate_national_id", "national ID already registered")
	ErrDuplicatePhysicianEmail = newError(KindConflict, "duplicate_physician_email", "a physician with this email already exists")
	ErrSlotConflict            = newError(KindConflict, "slot_conflict", "the requested time is no longer available")

	// Not found
	ErrUserNotFound         = newError(KindNotFound, "user_not_found", "user not found")
	ErrSpecialtyNotFound    = newError(KindNotFound, "specialty_not_found", "specialty not found")
	ErrPhysicianNotFound    = newError(KindNotFound, "physician_not_found", "physician not found")
	ErrAppointmentNotFound  = newError(KindNotFound, "appointment_not_found", "appointment not found")
	ErrNotificationNotFound = newError(KindNotFound, "notification_not_found", "notification not found")

	// State
	ErrAlreadyFinalized = newError(KindState, "already_finalized", "appointment is already finalized")
	ErrNotPending       = newError(KindState, "not_pending", "only pending appointments can be changed")

	// Authentication
	ErrBadPassword             = newError(KindAuthentication, "bad_password", "invalid email or password")
	ErrBadOldPassword          = newError(KindAuthentication, "bad_old_password", "current password is incorrect")
	ErrSecurityAnswersMismatch = newError(KindAuthentication, "security_answers_mismatch", "security answers do not match")
	ErrInvalidToken            = newError(KindAuthentication, "invalid_token", "invalid or expired token")
	ErrTokenRevoked            = newError(KindAuthentication, "token_revoked", "token has been revoked")

	// Forbidden
	ErrNotOwned           = newError(KindForbidden, "not_owned", "appointment does not belong to you")
	ErrForeignPhysician   = newError(KindForbidden, "foreign_physician", "you can only act on your own physician calendar")
	ErrAdministratorsOnly = newError(KindForbidden, "administrators_only", "only administrators can do this")

	// Storage
	ErrStorage = newError(KindStorage, "storage", "storage failure")
)

// storageError wraps an unexpected repository failure, leaving usecase errors untouched
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return err
	}
	return ErrStorage.Wrap(err)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
