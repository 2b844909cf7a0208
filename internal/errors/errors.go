package errors

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an error for callers and for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindPermission
	KindStorage
)

// Error is the domain error carried from services to handlers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// ErrDuplicateEmail is returned when a login email is already registered.
	ErrDuplicateEmail = newError(KindConflict, "DUPLICATE_EMAIL", "email already registered")
	// ErrDuplicateLabel is returned when a label name is already taken.
	ErrDuplicateLabel = newError(KindConflict, "DUPLICATE_LABEL", "label already exists")
	// ErrAlreadyInTeam is returned when a member is already linked to a team.
	ErrAlreadyInTeam = newError(KindConflict, "ALREADY_IN_TEAM", "member already belongs to this team")
	// ErrAlreadyAssigned is returned for a duplicate (service, team, member) assignment.
	ErrAlreadyAssigned = newError(KindConflict, "ALREADY_ASSIGNED", "member already assigned to this team for this service")

	ErrMemberNotFound     = newError(KindNotFound, "MEMBER_NOT_FOUND", "member not found")
	ErrUserNotFound       = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrLabelNotFound      = newError(KindNotFound, "LABEL_NOT_FOUND", "label not found")
	ErrMinistryNotFound   = newError(KindNotFound, "MINISTRY_NOT_FOUND", "ministry not found")
	ErrTeamNotFound       = newError(KindNotFound, "TEAM_NOT_FOUND", "team not found")
	ErrTeamMemberNotFound = newError(KindNotFound, "TEAM_MEMBER_NOT_FOUND", "team member not found")
	ErrServiceNotFound    = newError(KindNotFound, "SERVICE_NOT_FOUND", "service not found")
	ErrAssignmentNotFound = newError(KindNotFound, "ASSIGNMENT_NOT_FOUND", "assignment not found")

	// ErrPermissionDenied is returned when the caller's role lacks scheduling rights.
	ErrPermissionDenied = newError(KindPermission, "PERMISSION_DENIED", "role is not allowed to manage services")

	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = newError(KindValidation, "INVALID_CREDENTIALS", "invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = newError(KindValidation, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token")
)

// Validation builds a validation error. Nothing has been written when it is returned.
func Validation(code, message string) error {
	return newError(KindValidation, code, message)
}

// FromStorage converts a persistence error into a domain error. Domain errors
// pass through untouched so transaction callbacks can return them directly.
func FromStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Code: "CONFLICT", Message: op, Err: err}
	}
	return &Error{Kind: KindStorage, Code: "STORAGE_ERROR", Message: op, Err: err}
}

// KindOf returns the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

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
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch domainErr.Kind {
	case KindValidation:
		status := http.StatusBadRequest
		if domainErr == ErrInvalidCredentials || domainErr == ErrInvalidRefreshToken {
			status = http.StatusUnauthorized
		}
		return NewHTTPError(status, domainErr.Message, domainErr.Code)
	case KindConflict:
		return NewHTTPError(http.StatusConflict, domainErr.Message, domainErr.Code)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, domainErr.Message, domainErr.Code)
	case KindPermission:
		return NewHTTPError(http.StatusForbidden, domainErr.Message, domainErr.Code)
	case KindStorage:
		// the operation was rolled back; the client has to resubmit
		return NewHTTPError(http.StatusInternalServerError, "storage failure, nothing was changed", domainErr.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
