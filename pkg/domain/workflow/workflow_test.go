package workflow_test

import (
	"testing"
	"time"

	"github.com/keti-strato/pms/pkg/domain/workflow"
)

func TestFormatDuration(t *testing.T) {
	theory := func(d time.Duration, want string) func(*testing.T) {
		return func(t *testing.T) {
			if got := workflow.FormatDuration(d); got != want {
				t.Errorf("FormatDuration(%s) = %s, want %s", d, got, want)
			}
		}
	}

	t.Run("zero", theory(0, "0s"))
	t.Run("seconds", theory(42*time.Second, "42s"))
	t.Run("sub-seconds are truncated", theory(42*time.Second+900*time.Millisecond, "42s"))
	t.Run("minutes", theory(3*time.Minute+5*time.Second, "3m 5s"))
	t.Run("exact minutes", theory(3*time.Minute, "3m 0s"))
	t.Run("hours", theory(2*time.Hour+5*time.Second, "2h 0m 5s"))
	t.Run("days are in hours", theory(50*time.Hour+1*time.Minute+1*time.Second, "50h 1m 1s"))
	t.Run("negative", theory(-time.Second, "0s"))
}
