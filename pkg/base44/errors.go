package base44

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the platform for the recognized failure kinds.
const (
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeAuthentication = "AUTHENTICATION_REQUIRED"
	ErrorCodeAuthorization  = "INSUFFICIENT_PERMISSIONS"
	ErrorCodeNotFound       = "NOT_FOUND"
)

// fallbackMessage is used when a server response carries no usable message.
const fallbackMessage = "Unknown error"

// Error is the normalized error every failure is converted into before it
// reaches the caller: transport failures, non-2xx responses, and local
// precondition failures all share this shape. Callers distinguish kinds by
// inspecting Status and Code (or the Is* helpers), not by type identity.
type Error struct {
	// Message is the human-readable description.
	Message string `json:"message"`
	// Status is the HTTP-style status code, 0 when no response was received.
	Status int `json:"status,omitempty"`
	// Code is the symbolic error code supplied by the server, if any.
	Code string `json:"code,omitempty"`
	// Data carries the raw server error payload, if any.
	Data json.RawMessage `json:"data,omitempty"`
	// Err is the wrapped original cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.Status)
	}

	return e.Message
}

// Unwrap exposes the original cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON serializes the error to a plain structured form suitable for
// logging or crossing process boundaries.
func (e *Error) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name    string          `json:"name"`
		Message string          `json:"message"`
		Status  int             `json:"status,omitempty"`
		Code    string          `json:"code,omitempty"`
		Data    json.RawMessage `json:"data,omitempty"`
		Cause   string          `json:"cause,omitempty"`
	}

	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}

	data, err := json.Marshal(wire{
		Name:    "Base44Error",
		Message: e.Message,
		Status:  e.Status,
		Code:    e.Code,
		Data:    e.Data,
		Cause:   cause,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling error: %w", err)
	}

	return data, nil
}

// errorBody is the server-side error envelope. Message wins over Detail.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    string `json:"code"`
}

// FromResponse normalizes a server response into an *Error. The message is
// taken from the body's "message" field, then "detail", then a fixed
// fallback. Status zero means no response was received (transport failure).
func FromResponse(status int, body []byte, cause error) *Error {
	var parsed errorBody

	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}

	message := parsed.Message
	if message == "" {
		message = parsed.Detail
	}

	if message == "" {
		if cause != nil && status == 0 {
			message = cause.Error()
		} else {
			message = fallbackMessage
		}
	}

	var data json.RawMessage
	if json.Valid(body) {
		data = json.RawMessage(body)
	}

	return &Error{
		Message: message,
		Status:  status,
		Code:    parsed.Code,
		Data:    data,
		Err:     cause,
	}
}

// NewValidationError builds a 400 VALIDATION_ERROR with a caller message.
func NewValidationError(message string) *Error {
	return &Error{Message: message, Status: http.StatusBadRequest, Code: ErrorCodeValidation}
}

// NewAuthenticationError builds a 401 AUTHENTICATION_REQUIRED. An empty
// message selects the default.
func NewAuthenticationError(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}

	return &Error{Message: message, Status: http.StatusUnauthorized, Code: ErrorCodeAuthentication}
}

// NewAuthorizationError builds a 403 INSUFFICIENT_PERMISSIONS. An empty
// message selects the default.
func NewAuthorizationError(message string) *Error {
	if message == "" {
		message = "Insufficient permissions"
	}

	return &Error{Message: message, Status: http.StatusForbidden, Code: ErrorCodeAuthorization}
}

// NewNotFoundError builds a 404 NOT_FOUND for the named resource.
func NewNotFoundError(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}

	return &Error{Message: resource + " not found", Status: http.StatusNotFound, Code: ErrorCodeNotFound}
}

// IsValidation reports whether the error is a 400 validation failure.
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsAuthentication reports whether the error is a 401 authentication failure.
func IsAuthentication(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsAuthorization reports whether the error is a 403 authorization failure.
func IsAuthorization(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNotFound reports whether the error is a 404 not-found failure.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	b44Err := &Error{}
	if errors.As(err, &b44Err) {
		return b44Err.Status == status
	}

	return false
}

// Static errors for local precondition failures.
var (
	ErrConfigRequired          = errors.New("config is required")
	ErrAppIDRequired           = errors.New("appId is required")
	ErrPageContextRequired     = errors.New("login requires a page context")
	ErrPopupBlocked            = errors.New("login popup could not be opened")
	ErrEntityNameRequired      = errors.New("entity name is required")
	ErrPackageNameRequired     = errors.New("integration package name is required")
	ErrEndpointNameRequired    = errors.New("integration endpoint name is required")
	ErrNoTokenInRefresh        = errors.New("no token in refresh response")
	ErrNamedParametersRequired = errors.New("integration endpoints must receive an object with named parameters")
)
