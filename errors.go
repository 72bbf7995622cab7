package oasbind

import (
	"errors"
	"net/http"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// HeaderCarrier is implemented by errors that add headers to the error response.
type HeaderCarrier interface {
	Headers() http.Header
}

// ErrorStatus extracts the HTTP status code from err. Errors that do not
// implement StatusCoder map to http.StatusInternalServerError.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

func message(msg, fallback string, cause error) string {
	if msg == "" {
		msg = fallback
	}
	if cause != nil {
		return msg + ": " + cause.Error()
	}
	return msg
}

func basicChallenge() http.Header {
	h := http.Header{}
	h.Set("WWW-Authenticate", "basic")
	return h
}

// ConfigurationError reports an unreadable or invalid schema, or a setup
// misconfiguration. It is only returned at setup time.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return message(e.Message, "OpenAPI schema configuration error", e.Err)
}

func (e *ConfigurationError) Unwrap() error   { return e.Err }
func (e *ConfigurationError) StatusCode() int { return http.StatusInternalServerError }

// OperationError reports an operation identifier the document does not declare.
type OperationError struct {
	Message     string
	OperationID string
}

func (e *OperationError) Error() string {
	msg := message(e.Message, "OpenAPI operation not found", nil)
	if e.OperationID != "" {
		msg += ": " + e.OperationID
	}
	return msg
}

func (e *OperationError) StatusCode() int { return http.StatusInternalServerError }

// ContextError reports access to the validated context outside the pipeline.
type ContextError struct {
	Message string
}

func (e *ContextError) Error() string {
	return message(e.Message, "OpenAPI context missed in request", nil)
}

func (e *ContextError) StatusCode() int { return http.StatusInternalServerError }

// BadRequest is a generic client error.
type BadRequest struct {
	Message string
	Err     error
}

func (e *BadRequest) Error() string   { return message(e.Message, "Bad request", e.Err) }
func (e *BadRequest) Unwrap() error   { return e.Err }
func (e *BadRequest) StatusCode() int { return http.StatusBadRequest }

// SecurityError is returned when none of the operation's security
// alternatives is satisfied.
type SecurityError struct {
	Message string
}

func (e *SecurityError) Error() string   { return message(e.Message, "Not authenticated", nil) }
func (e *SecurityError) StatusCode() int { return http.StatusForbidden }

// BasicSecurityError is the unauthenticated variant of SecurityError, used
// when the only acceptable credentials are HTTP basic and none were sent.
type BasicSecurityError struct {
	Message string
}

func (e *BasicSecurityError) Error() string        { return message(e.Message, "Not authenticated", nil) }
func (e *BasicSecurityError) StatusCode() int      { return http.StatusUnauthorized }
func (e *BasicSecurityError) Headers() http.Header { return basicChallenge() }

// InvalidCredentials is returned when credentials were sent but are malformed
// or rejected.
type InvalidCredentials struct {
	Message string
	Err     error
}

func (e *InvalidCredentials) Error() string   { return message(e.Message, "Invalid credentials", e.Err) }
func (e *InvalidCredentials) Unwrap() error   { return e.Err }
func (e *InvalidCredentials) StatusCode() int { return http.StatusForbidden }

// BasicInvalidCredentials is the unauthenticated variant of InvalidCredentials.
type BasicInvalidCredentials struct {
	Message string
	Err     error
}

func (e *BasicInvalidCredentials) Error() string {
	return message(e.Message, "Invalid credentials", e.Err)
}

func (e *BasicInvalidCredentials) Unwrap() error        { return e.Err }
func (e *BasicInvalidCredentials) StatusCode() int      { return http.StatusUnauthorized }
func (e *BasicInvalidCredentials) Headers() http.Header { return basicChallenge() }

// ObjectDoesNotExist signals a missing resource. Label names the resource in
// the default message, e.g. "Post not found".
type ObjectDoesNotExist struct {
	Label   string
	Message string
}

func (e *ObjectDoesNotExist) Error() string {
	if e.Message != "" {
		return e.Message
	}
	label := e.Label
	if label == "" {
		label = "Object"
	}
	return label + " not found"
}

func (e *ObjectDoesNotExist) StatusCode() int { return http.StatusNotFound }

// ServerError is the catch-all for unexpected failures. Its message is safe
// to show to clients; the cause is kept for server-side logging only.
type ServerError struct {
	Message string
	Err     error
}

func (e *ServerError) Error() string   { return message(e.Message, "Server error", nil) }
func (e *ServerError) Unwrap() error   { return e.Err }
func (e *ServerError) StatusCode() int { return http.StatusInternalServerError }
