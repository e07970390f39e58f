package handlers

import (
	"context"

	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/labstack/echo/v4"
)

type Syncer interface {
	Sync(context.Context) (mirror.Report, error)
}

// SyncHandler synchronizes the mirror with the platform.
func SyncHandler(s Syncer) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := s.Sync(c.Request().Context())
		if err != nil {
			kind := kerr.Kind(err)
			return c.JSON(statusOf(kind), apiwl.SyncReport{
				Status: apiwl.StatusFailure,
				Error:  &apiwl.Failure{Kind: kind, Message: xe.Message(err)},
			})
		}
		return c.JSON(statusOf(""), apiwl.ComposeSyncReport(report))
	}
}

// ListWorkloadsHandler responds mirrored workloads.
func ListWorkloadsHandler(r kdb.Reader) echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := r.List(c.Request().Context())
		if err != nil {
			kind := kerr.Kind(err)
			return c.JSON(statusOf(kind), apiwl.WorkloadList{
				Status: apiwl.StatusFailure,
				Items:  []apiwl.Workload{},
				Error:  &apiwl.Failure{Kind: kind, Message: xe.Message(err)},
			})
		}
		items := make([]apiwl.Workload, 0, len(records))
		for _, r := range records {
			items = append(items, apiwl.ComposeWorkload(r))
		}
		return c.JSON(statusOf(""), apiwl.WorkloadList{Status: apiwl.StatusSucceeded, Items: items})
	}
}
