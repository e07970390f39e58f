package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keti-strato/pms/pkg/domain/workload/db/memory"
	"github.com/keti-strato/pms/pkg/workloads/document"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/keti-strato/pms/pkg/workloads/submission"
)

type fakeServices struct{}

func (fakeServices) Submit(context.Context, submission.Request) (submission.Outcome, error) {
	return submission.Outcome{Status: submission.StatusSucceeded, Stage: submission.Succeeded, WorkloadId: "keti001"}, nil
}

func (fakeServices) AnnotateAll(context.Context, []document.Step) error {
	return nil
}

func (fakeServices) Sync(context.Context) (mirror.Report, error) {
	return mirror.Report{}, nil
}

func TestBuildServer(t *testing.T) {
	fake := fakeServices{}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pms_fake_metric 1\n"))
	})
	e := BuildServer(Services{
		Submitter: fake,
		Annotator: fake,
		Syncer:    fake,
		Workloads: memory.New(),
		Metrics:   metrics,
	}, "off")

	theory := func(method string, target string, body string, wantCode int, wantBody string) func(*testing.T) {
		return func(t *testing.T) {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			if body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != wantCode {
				t.Errorf("status: %d, want %d (body: %s)", rec.Code, wantCode, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), wantBody) {
				t.Errorf("body should contain %s: %s", wantBody, rec.Body.String())
			}
		}
	}

	t.Run("strato", theory(http.MethodPost, "/api/v1/strato", `{"yaml": "ZG9j"}`, http.StatusOK, `"mlId":"keti001"`))
	t.Run("strato with slash", theory(http.MethodPost, "/api/v1/strato/", `{"yaml": "ZG9j"}`, http.StatusOK, `"mlId":"keti001"`))
	t.Run("predict", theory(http.MethodPost, "/api/v1/predict", `[]`, http.StatusOK, `"status":"succeeded"`))
	t.Run("sync", theory(http.MethodPost, "/api/v1/sync", "", http.StatusOK, `"status":"succeeded"`))
	t.Run("workloads", theory(http.MethodGet, "/api/v1/workloads", "", http.StatusOK, `"items":[]`))
	t.Run("info without kubernetes", theory(http.MethodGet, "/api/v1/info?namespace=x", "", http.StatusServiceUnavailable, "workflow status"))
	t.Run("metrics", theory(http.MethodGet, "/metrics", "", http.StatusOK, "pms_fake_metric"))
	t.Run("unknown", theory(http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound, ""))
}
