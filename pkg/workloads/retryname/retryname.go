// Package retryname derives the name of the workload which a retry replaces.
//
// Retries are named after the original: the first retry of "train-pipeline" is
// "train-pipeline-retry-0", then "train-pipeline-retry-1", and so on.
package retryname

import (
	"strconv"
	"strings"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
)

// Predecessor returns the name of the workload replaced by the retry named name.
//
//	"p-retry-0" -> "p"
//	"p-retry-3" -> "p-retry-2"
//
// It returns a MalformedName error when the last segment is not a decimal number,
// or when nothing remains after stripping a "-<marker>-0" suffix.
func Predecessor(name string) (string, error) {
	segments := strings.Split(name, "-")
	last := segments[len(segments)-1]

	if len(segments) < 2 || last == "" || strings.Trim(last, "0123456789") != "" {
		return "", xe.Wrap(&kerr.MalformedName{Name: name, Reason: "last segment should be a number"})
	}

	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return "", xe.Wrap(&kerr.MalformedName{Name: name, Reason: err.Error()})
	}

	if n == 0 {
		if len(segments) < 3 {
			return "", xe.Wrap(&kerr.MalformedName{Name: name, Reason: "no base name before retry marker"})
		}
		base := strings.Join(segments[:len(segments)-2], "-")
		if base == "" {
			return "", xe.Wrap(&kerr.MalformedName{Name: name, Reason: "base name is empty"})
		}
		return base, nil
	}

	return strings.Join(segments[:len(segments)-1], "-") + "-" + strconv.FormatUint(n-1, 10), nil
}
