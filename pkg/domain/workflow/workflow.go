// Package workflow is status of Argo Workflows running submitted workloads.
package workflow

import (
	"context"
	"fmt"
	"time"
)

// DefaultNamespace is the namespace of workflows when not specified.
const DefaultNamespace = "argo-test"

type Status struct {
	Name  string
	Phase string

	// Duration from start to finish, or to now while running.
	Duration time.Duration
}

type Interface interface {
	// List returns workflows in the namespace.
	List(ctx context.Context, namespace string) ([]Status, error)
}

// FormatDuration writes d as "Xh Ym Zs", "Ym Zs" or "Zs", truncated to seconds.
//
// Days are counted in hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case 0 < h:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case 0 < m:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
