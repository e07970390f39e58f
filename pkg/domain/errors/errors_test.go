package errors_test

import (
	"errors"
	"fmt"
	"testing"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
)

func TestKind(t *testing.T) {
	type When struct {
		err error
	}
	type Then struct {
		kind string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			if actual := kerr.Kind(when.err); actual != then.kind {
				t.Errorf("kind: actual = %s, expected = %s", actual, then.kind)
			}
		}
	}

	t.Run("nil", theory(When{err: nil}, Then{kind: ""}))
	t.Run("unknown", theory(When{err: errors.New("fake")}, Then{kind: "UnexpectedError"}))
	t.Run("wrapped store error", theory(
		When{err: xe.Wrap(fmt.Errorf("%w: fake", kerr.ErrStore))},
		Then{kind: "StoreError"},
	))
	t.Run("allocation error caused by store error", theory(
		When{err: fmt.Errorf("%w: %w", kerr.ErrAllocation, kerr.ErrStore)},
		Then{kind: "AllocationError"},
	))
	t.Run("malformed name", theory(
		When{err: &kerr.MalformedName{Name: "x", Reason: "fake"}},
		Then{kind: "MalformedNameError"},
	))
	t.Run("remote rejection", theory(
		When{err: xe.Wrap(&kerr.RemoteError{Operation: "apply", Code: "10002", Message: "fake"})},
		Then{kind: "RemoteApiError"},
	))
	t.Run("transport failure", theory(
		When{err: &kerr.TransportError{Operation: "list", Err: errors.New("fake")}},
		Then{kind: "RemoteApiError"},
	))
	t.Run("document format", theory(
		When{err: fmt.Errorf("%w: fake", kerr.ErrDocumentFormat)},
		Then{kind: "DocumentFormatError"},
	))
	t.Run("prediction", theory(
		When{err: fmt.Errorf("%w: fake", kerr.ErrPredictionService)},
		Then{kind: "PredictionServiceError"},
	))
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := xe.Wrap(&kerr.TransportError{Operation: "delete", Err: cause})

	if !errors.Is(err, kerr.ErrRemoteApi) {
		t.Error("it is not a remote api error")
	}
	if !errors.Is(err, cause) {
		t.Error("it does not unwrap to its cause")
	}
}
