package retryname_test

import (
	"errors"
	"testing"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	"github.com/keti-strato/pms/pkg/workloads/retryname"
)

func TestPredecessor(t *testing.T) {
	type Then struct {
		name      string
		malformed bool
	}

	theory := func(when string, then Then) func(*testing.T) {
		return func(t *testing.T) {
			actual, err := retryname.Predecessor(when)
			if then.malformed {
				if !errors.Is(err, kerr.ErrMalformedName) {
					t.Errorf("expected malformed name error, got (%s, %v)", actual, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != then.name {
				t.Errorf("predecessor: actual = %s, expected = %s", actual, then.name)
			}
		}
	}

	t.Run("first retry", theory("train-pipeline-retry-0", Then{name: "train-pipeline"}))
	t.Run("third retry", theory("train-pipeline-retry-3", Then{name: "train-pipeline-retry-2"}))
	t.Run("second retry", theory("x-retry-1", Then{name: "x-retry-0"}))
	t.Run("multi-digit", theory("x-retry-10", Then{name: "x-retry-9"}))
	t.Run("marker is not checked", theory("a-b-0", Then{name: "a"}))

	t.Run("non numeric last segment", theory("train-pipeline", Then{malformed: true}))
	t.Run("no segments", theory("pipeline", Then{malformed: true}))
	t.Run("empty", theory("", Then{malformed: true}))
	t.Run("trailing hyphen", theory("pipeline-", Then{malformed: true}))
	t.Run("signed number", theory("pipeline-retry-+1", Then{malformed: true}))
	t.Run("zero without base", theory("retry-0", Then{malformed: true}))
	t.Run("zero with empty base", theory("-retry-0", Then{malformed: true}))
}
