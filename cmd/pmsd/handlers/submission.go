package handlers

import (
	"context"
	"encoding/json"

	apierr "github.com/keti-strato/pms/pkg/api/types/errors"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	"github.com/keti-strato/pms/pkg/workloads/submission"
	"github.com/labstack/echo/v4"
)

type Submitter interface {
	Submit(context.Context, submission.Request) (submission.Outcome, error)
}

// SubmitHandler submits a workload.
//
// Failed submissions are responded with the outcome, too.
func SubmitHandler(s Submitter) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := requireJSON(c); err != nil {
			return err
		}

		body := new(apiwl.SubmitRequest)
		if err := json.NewDecoder(c.Request().Body).Decode(body); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}
		if body.Yaml == "" {
			return apierr.BadRequest(`"yaml" is required`, nil)
		}

		outcome, err := s.Submit(c.Request().Context(), body.AsRequest())
		if err != nil && outcome.Error == nil {
			return apierr.InternalServerError(err)
		}
		kind := ""
		if outcome.Error != nil {
			kind = outcome.Error.Kind
		}
		return c.JSON(statusOf(kind), apiwl.ComposeOutcome(outcome))
	}
}
