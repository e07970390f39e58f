package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apierr "github.com/keti-strato/pms/pkg/api/types/errors"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

// ErrFailure is returned when pmsd responds with a failure envelope.
var ErrFailure = errors.New("pmsd reports failure")

type StatusCodeRange int

const (
	StatusUnknown StatusCodeRange = iota
	Status1xx
	Status2xx
	Status3xx
	Status4xx
	Status5xx
)

func (sc StatusCodeRange) String() string {
	switch sc {
	case Status1xx:
		return "informational response"
	case Status2xx:
		return "success"
	case Status3xx:
		return "redirect"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return fmt.Sprintf("unknown (%d)", sc)
	}
}

func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	switch sc := resp.StatusCode; {
	case sc < 200:
		return Status1xx
	case sc < 300:
		return Status2xx
	case sc < 400:
		return Status3xx
	case sc < 500:
		return Status4xx
	case sc < 600:
		return Status5xx
	default:
		return StatusUnknown
	}
}

// envelope is a response carrying status and error.
type envelope interface {
	apiwl.Outcome | apiwl.SyncReport | apiwl.Predicted | apiwl.WorkloadList | apiwl.WorkflowList
}

func failureOf(v any) *apiwl.Failure {
	switch e := v.(type) {
	case *apiwl.Outcome:
		return e.Error
	case *apiwl.SyncReport:
		return e.Error
	case *apiwl.Predicted:
		return e.Error
	case *apiwl.WorkloadList:
		return e.Error
	case *apiwl.WorkflowList:
		return e.Error
	}
	return nil
}

// unmarshal http response into an envelope.
//
// Failure envelopes are decoded into v even when status code is 4xx or 5xx.
// In that case, error wrapping ErrFailure is returned.
//
// When the response is not an envelope, error is returned with the server message.
func unmarshalJsonResponse[T envelope](resp *http.Response, v *T) error {
	scr := StatusCodeRangeOf(resp)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: cannot read server message (status code = %d)", err, resp.StatusCode)
	}

	if scr == Status2xx {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("%w: unexpected response (status code = %d)", err, resp.StatusCode)
		}
		return nil
	}

	if err := json.Unmarshal(body, v); err == nil {
		if f := failureOf(v); f != nil {
			return fmt.Errorf("%w: %s: %s", ErrFailure, f.Kind, f.Message)
		}
	}
	*v = *new(T)

	if detail, err := parseErrorMessage(body); err == nil {
		return fmt.Errorf("%s (status code = %d)\n%s", scr, resp.StatusCode, detail)
	}
	return fmt.Errorf("%s (status code = %d)\n%s", scr, resp.StatusCode, string(body))
}

func parseErrorMessage(body []byte) (string, error) {
	em := apierr.ErrorMessage{}
	if err := json.Unmarshal(body, &em); err == nil {
		return em.Error(), nil
	}

	// echo's own errors, like 404 for unknown paths.
	msg := struct {
		Message *string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", err
	}
	if msg.Message == nil {
		return "", errors.New("no message")
	}
	return *msg.Message, nil
}
