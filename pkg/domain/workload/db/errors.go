package db

import (
	"fmt"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
)

// requested workload is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return kerr.ErrMissing
}

// StoreError is a failure of the mirror store.
type StoreError struct {
	Operation string
	Hint      string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("store: %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("store: %s: %v (%s)", e.Operation, e.Err, e.Hint)
}

func (e *StoreError) Unwrap() []error {
	return []error{kerr.ErrStore, e.Err}
}
