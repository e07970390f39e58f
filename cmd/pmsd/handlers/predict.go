package handlers

import (
	"context"
	"io"

	apierr "github.com/keti-strato/pms/pkg/api/types/errors"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/workloads/document"
	"github.com/labstack/echo/v4"
)

type Annotator interface {
	AnnotateAll(context.Context, []document.Step) error
}

// PredictHandler annotates resources of steps in the request body.
func PredictHandler(a Annotator) echo.HandlerFunc {
	failed := func(c echo.Context, err error) error {
		kind := kerr.Kind(err)
		return c.JSON(statusOf(kind), apiwl.Predicted{
			Status: apiwl.StatusFailure,
			Error:  &apiwl.Failure{Kind: kind, Message: xe.Message(err)},
		})
	}

	return func(c echo.Context) error {
		if err := requireJSON(c); err != nil {
			return err
		}
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apierr.BadRequest("can not read the request body", err)
		}

		steps, err := document.ParseSteps(raw)
		if err != nil {
			return failed(c, err)
		}
		if err := a.AnnotateAll(c.Request().Context(), steps); err != nil {
			c.Logger().Warnf("prediction failed: %s", err)
			return failed(c, err)
		}

		items, err := document.ToJSON(steps)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(statusOf(""), apiwl.Predicted{Status: apiwl.StatusSucceeded, Items: items})
	}
}
