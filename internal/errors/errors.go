package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDoctorNotFound is returned when the referenced user is missing or not a doctor.
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrTimeSlotNotFound is returned when a time slot is not found.
	ErrTimeSlotNotFound = errors.New("time slot not found")
	// ErrAppointmentNotFound is returned when an appointment is not found.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrForbidden is returned on role or ownership mismatch.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrPatientCannotModify is returned when a patient tries to update an appointment.
	ErrPatientCannotModify = errors.New("patients cannot modify appointments")
	// ErrUnauthenticated is returned when the caller has no valid identity.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrSlotUnavailable is returned when booking a slot that is already taken.
	ErrSlotUnavailable = errors.New("this time slot is not available")
	// ErrDuplicateBooking is returned when the patient already holds the slot.
	ErrDuplicateBooking = errors.New("appointment for this patient and time slot already exists")
	// ErrDuplicateTimeSlot is returned when an identical slot already exists.
	ErrDuplicateTimeSlot = errors.New("an identical time slot already exists")
	// ErrTimeSlotInUse is returned when changing or deleting a slot held by an active appointment.
	ErrTimeSlotInUse = errors.New("time slot is held by an active appointment")
)

// ValidationError is a rejected input with a human-readable reason.
type ValidationError struct {
	Reason string
	Code   string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is matches any ValidationError with the same code, so sentinels work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// NewValidationError creates a generic validation error.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason, Code: "VALIDATION_ERROR"}
}

var (
	ErrInvalidTimeRange   = &ValidationError{Reason: "start time must be before end time", Code: "INVALID_TIME_RANGE"}
	ErrSlotOverlap        = &ValidationError{Reason: "this time slot overlaps with an existing time slot", Code: "TIME_SLOT_OVERLAP"}
	ErrSelfBooking        = &ValidationError{Reason: "doctor cannot book appointment with themselves", Code: "SELF_BOOKING"}
	ErrPastTimeSlot       = &ValidationError{Reason: "cannot book appointment in the past", Code: "PAST_TIME_SLOT"}
	ErrSlotDoctorMismatch = &ValidationError{Reason: "time slot does not belong to this doctor", Code: "TIME_SLOT_DOCTOR_MISMATCH"}
	ErrInvalidStatus      = &ValidationError{Reason: "invalid status", Code: "INVALID_STATUS"}
	ErrInvalidTransition  = &ValidationError{Reason: "status transition not allowed", Code: "INVALID_TRANSITION"}
	ErrInvalidRole        = &ValidationError{Reason: "invalid role", Code: "INVALID_ROLE"}
	ErrPasswordMismatch   = &ValidationError{Reason: "passwords must match", Code: "PASSWORD_MISMATCH"}
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrDoctorNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "DOCTOR_NOT_FOUND")
	case errors.Is(err, ErrTimeSlotNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TIME_SLOT_NOT_FOUND")
	case errors.Is(err, ErrAppointmentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "APPOINTMENT_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrPatientCannotModify):
		return NewHTTPError(http.StatusForbidden, err.Error(), "PATIENT_CANNOT_MODIFY")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrSlotUnavailable):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SLOT_UNAVAILABLE")
	case errors.Is(err, ErrDuplicateBooking):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DUPLICATE_BOOKING")
	case errors.Is(err, ErrDuplicateTimeSlot):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DUPLICATE_TIME_SLOT")
	case errors.Is(err, ErrTimeSlotInUse):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TIME_SLOT_IN_USE")
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusBadRequest, verr.Reason, verr.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
