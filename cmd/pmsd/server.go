package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/keti-strato/pms/cmd/pmsd/handlers"
	apierr "github.com/keti-strato/pms/pkg/api/types/errors"
	"github.com/keti-strato/pms/pkg/domain/workflow"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	"github.com/keti-strato/pms/pkg/utils/echoutil"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var API_ROOT = "/api/v1"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

// Services are what pmsd serves.
type Services struct {
	Submitter handlers.Submitter
	Annotator handlers.Annotator
	Syncer    handlers.Syncer
	Workloads kdb.Reader

	// nil when workflow status is not available.
	Workflows workflow.Interface

	// nil to serve the default registry.
	Metrics http.Handler
}

func BuildServer(s Services, loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	echoutil.SetLevel(e, loglevel)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.RequestID(), echoutil.LogHandlerFunc)

	e.POST(api("strato"), handlers.SubmitHandler(s.Submitter))
	e.POST(api("predict"), handlers.PredictHandler(s.Annotator))
	e.POST(api("sync"), handlers.SyncHandler(s.Syncer))
	e.GET(api("workloads"), handlers.ListWorkloadsHandler(s.Workloads))

	if s.Workflows != nil {
		e.GET(api("info"), handlers.InfoHandler(s.Workflows))
	} else {
		e.GET(api("info"), func(echo.Context) error {
			return apierr.ServiceUnavailable("workflow status is not configured", nil)
		})
	}

	metrics := s.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	e.GET("/metrics/", echo.WrapHandler(metrics))

	return e
}
