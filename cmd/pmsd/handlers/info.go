package handlers

import (
	"net/http"

	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	"github.com/keti-strato/pms/pkg/domain/workflow"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/labstack/echo/v4"
)

// InfoHandler responds status of workflows in the namespace given by query "namespace".
func InfoHandler(w workflow.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		namespace := c.QueryParam("namespace")
		if namespace == "" {
			namespace = workflow.DefaultNamespace
		}

		statuses, err := w.List(c.Request().Context(), namespace)
		if err != nil {
			c.Logger().Errorf("can not list workflows in %s: %s", namespace, err)
			return c.JSON(http.StatusBadGateway, apiwl.WorkflowList{
				Status:    apiwl.StatusFailure,
				Namespace: namespace,
				Items:     []apiwl.Workflow{},
				Error:     &apiwl.Failure{Kind: "RemoteApiError", Message: xe.Message(err)},
			})
		}

		items := make([]apiwl.Workflow, 0, len(statuses))
		for _, s := range statuses {
			items = append(items, apiwl.Workflow{
				Name:     s.Name,
				Status:   s.Phase,
				Duration: workflow.FormatDuration(s.Duration),
			})
		}
		return c.JSON(http.StatusOK, apiwl.WorkflowList{
			Status:    apiwl.StatusSucceeded,
			Namespace: namespace,
			Items:     items,
		})
	}
}
