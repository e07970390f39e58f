package errors

import (
	"errors"
	"fmt"
)

var (
	// the mirror store is unavailable or a statement failed.
	ErrStore = errors.New("store error")

	// a new workload id could not be allocated.
	ErrAllocation = errors.New("allocation error")

	// a workload name does not follow the retry naming convention.
	ErrMalformedName = errors.New("malformed name")

	// the resource prediction service failed or answered unreadable.
	ErrPredictionService = errors.New("prediction service error")

	// the remote platform is unreachable or rejected a request.
	ErrRemoteApi = errors.New("remote api error")

	// a configuration document is not decodable or lacks required parts.
	ErrDocumentFormat = errors.New("document format error")

	// requested entity is not found.
	ErrMissing = errors.New("missing")
)

// Kind names the category of err, as reported to clients.
//
// It returns "" for nil, and "UnexpectedError" for errors of no known category.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAllocation):
		return "AllocationError"
	case errors.Is(err, ErrMalformedName):
		return "MalformedNameError"
	case errors.Is(err, ErrPredictionService):
		return "PredictionServiceError"
	case errors.Is(err, ErrRemoteApi):
		return "RemoteApiError"
	case errors.Is(err, ErrDocumentFormat):
		return "DocumentFormatError"
	case errors.Is(err, ErrStore):
		return "StoreError"
	case errors.Is(err, ErrMissing):
		return "MissingError"
	}
	return "UnexpectedError"
}

// RemoteError is a rejection with a message from the remote platform.
type RemoteError struct {
	Operation string
	Code      string
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s is rejected (code %s): %s", e.Operation, e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteApi
}

// TransportError is a failure to reach the remote platform or read its answer.
type TransportError struct {
	Operation string
	Status    int
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (http status %d): %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrRemoteApi, e.Err}
}

// MalformedName is a name which is not a retry of another workload.
type MalformedName struct {
	Name   string
	Reason string
}

func (e *MalformedName) Error() string {
	return fmt.Sprintf(`"%s" is not a retry name: %s`, e.Name, e.Reason)
}

func (e *MalformedName) Unwrap() error {
	return ErrMalformedName
}
