package openapi_server

import (
	"errors"
	"net/http"

	"github.com/natevvv/osm-path-visualizer/pkg/routing"
)

var (
	// ErrSessionNotFound is returned for unknown, deleted or expired sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned if the session limit is reached
	ErrTooManySessions = errors.New("too many sessions")
)

// ParsingError indicates that an error has occurred when parsing request parameters
type ParsingError struct {
	Err error
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

func (e *ParsingError) Error() string {
	return e.Err.Error()
}

// RequiredError indicates that an error has occurred when parsing request parameters
type RequiredError struct {
	Field string
}

func (e *RequiredError) Error() string {
	return "required field '" + e.Field + "' is zero value."
}

// ErrorHandler defines the required method for handling error. You may implement it and inject this into a controller if
// you would like errors to be handled differently from the DefaultErrorHandler
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse)

type errorBody struct {
	Error string `json:"error"`
}

// DefaultErrorHandler defines the default logic on how to handle errors from the controller. Any errors from parsing
// request params will return a StatusBadRequest. Otherwise, the error code originating from the servicer will be used.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse) {
	status := statusOf(err, result)
	EncodeJSONResponse(errorBody{Error: err.Error()}, &status, w)
}

func statusOf(err error, result *ImplResponse) int {
	var parsingErr *ParsingError
	var requiredErr *RequiredError
	var configurationErr *routing.ConfigurationError
	var preconditionErr *routing.PreconditionError

	switch {
	case errors.As(err, &parsingErr), errors.As(err, &requiredErr), errors.As(err, &configurationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.As(err, &preconditionErr):
		return http.StatusConflict
	case result != nil && result.Code != 0:
		return result.Code
	default:
		return http.StatusInternalServerError
	}
}
