package predictor

import (
	"net/http"
	"strconv"
)

// ServerError is returned when the prediction server answers with a non-2xx status.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	msg := "prediction server http error: " + strconv.Itoa(e.Status) + " " + http.StatusText(e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// StatusCode passes client errors (bad input, unknown model) through and
// reports everything else as a bad gateway.
func (e *ServerError) StatusCode() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}

// IsServerError reports whether err came from a non-2xx server response.
func IsServerError(err error) bool {
	_, ok := err.(*ServerError)
	return ok
}

// dependencyUnavailableError signals a missing runtime dependency (e.g. llama.cpp
// support not compiled in) so the HTTP layer can answer 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

func (e dependencyUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
