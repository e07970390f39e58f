package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

type recorded struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        string
}

func serve(t *testing.T, status int, resp string) (rest.Client, *recorded) {
	t.Helper()
	rec := new(recorded)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		*rec = recorded{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	cl, err := rest.NewClient(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return cl, rec
}

func TestNewClient(t *testing.T) {
	for name, server := range map[string]string{
		"not a url":        "://broken",
		"not http(s) url":  "ftp://example.com",
		"scheme is absent": "example.com:8080",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := rest.NewClient(server); err == nil {
				t.Errorf("expected error for %s", server)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	t.Run("it posts a request and returns outcome", func(t *testing.T) {
		cl, rec := serve(t, http.StatusOK, `{
			"status": "succeeded", "stage": "SUCCEEDED", "mlId": "keti002", "overwrite": 0
		}`)

		cluster := 2
		got, err := cl.Submit(context.Background(), apiwl.SubmitRequest{
			Yaml: "eWFtbA==", Cluster: &cluster, Predict: true,
		})
		if err != nil {
			t.Fatal(err)
		}

		want := apiwl.Outcome{Status: "succeeded", Stage: "SUCCEEDED", MlId: "keti002"}
		if !cmp.Equal(got, want) {
			t.Errorf("outcome:\n===actual===\n%+v\n===expected===\n%+v", got, want)
		}

		if rec.Method != http.MethodPost || rec.Path != "/api/v1/strato/" {
			t.Errorf("unexpected request: %s %s", rec.Method, rec.Path)
		}
		if rec.ContentType != "application/json" {
			t.Errorf("content type: %s", rec.ContentType)
		}
		sent := apiwl.SubmitRequest{}
		if err := json.Unmarshal([]byte(rec.Body), &sent); err != nil {
			t.Fatal(err)
		}
		if sent.Yaml != "eWFtbA==" || sent.Cluster == nil || *sent.Cluster != 2 || !sent.Predict {
			t.Errorf("unexpected body: %s", rec.Body)
		}
	})

	t.Run("it returns failure outcome with ErrFailure", func(t *testing.T) {
		cl, _ := serve(t, http.StatusBadGateway, `{
			"status": "failure", "stage": "SUBMITTING", "overwrite": 0,
			"error": {"kind": "RemoteApiError", "message": "unreachable"}
		}`)

		got, err := cl.Submit(context.Background(), apiwl.SubmitRequest{Yaml: "eWFtbA=="})
		if !errors.Is(err, rest.ErrFailure) {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Stage != "SUBMITTING" || got.Error == nil || got.Error.Kind != "RemoteApiError" {
			t.Errorf("unexpected outcome: %+v", got)
		}
	})

	t.Run("it reports server message when response is not an outcome", func(t *testing.T) {
		cl, _ := serve(t, http.StatusUnsupportedMediaType, `{"reason": "unsupported content type", "advice": "request body should be application/json"}`)

		got, err := cl.Submit(context.Background(), apiwl.SubmitRequest{})
		if err == nil || errors.Is(err, rest.ErrFailure) {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(err.Error(), "request body should be application/json") {
			t.Errorf("message is lost: %s", err)
		}
		if !cmp.Equal(got, apiwl.Outcome{}) {
			t.Errorf("outcome should be empty: %+v", got)
		}
	})
}

func TestSync(t *testing.T) {
	cl, rec := serve(t, http.StatusOK, `{"status": "succeeded", "deleted": 1, "inserted": 2, "refreshed": 0, "skipped": 3}`)

	got, err := cl.Sync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := apiwl.SyncReport{Status: "succeeded", Deleted: 1, Inserted: 2, Skipped: 3}
	if !cmp.Equal(got, want) {
		t.Errorf("report:\n===actual===\n%+v\n===expected===\n%+v", got, want)
	}
	if rec.Method != http.MethodPost || rec.Path != "/api/v1/sync/" {
		t.Errorf("unexpected request: %s %s", rec.Method, rec.Path)
	}
}

func TestPredict(t *testing.T) {
	cl, rec := serve(t, http.StatusOK, `{"status": "succeeded", "items": [{"name": "a"}]}`)

	got, err := cl.Predict(context.Background(), []byte(`[{"name": "a"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "succeeded" || string(got.Items) != `[{"name": "a"}]` {
		t.Errorf("unexpected response: %+v", got)
	}
	if rec.Path != "/api/v1/predict/" || rec.Body != `[{"name": "a"}]` {
		t.Errorf("unexpected request: %+v", rec)
	}
}

func TestWorkloads(t *testing.T) {
	cl, rec := serve(t, http.StatusOK, `{"status": "succeeded", "items": [
		{"id": "1", "mlId": "keti001", "name": "train", "namespace": "keti-crd", "description": "",
		 "mlStepCode": ["ml-step-100"], "status": "Running", "userId": "jhpark", "clusterIdx": "1"}
	]}`)

	got, err := cl.Workloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := apiwl.WorkloadList{
		Status: "succeeded",
		Items: []apiwl.Workload{{
			Id: "1", MlId: "keti001", Name: "train", Namespace: "keti-crd",
			MlStepCode: []string{"ml-step-100"}, Status: "Running", UserId: "jhpark", ClusterIdx: "1",
		}},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("list:\n===actual===\n%+v\n===expected===\n%+v", got, want)
	}
	if rec.Method != http.MethodGet || rec.Path != "/api/v1/workloads/" {
		t.Errorf("unexpected request: %s %s", rec.Method, rec.Path)
	}
}

func TestInfo(t *testing.T) {
	type When struct {
		namespace string
	}
	type Then struct {
		query string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			cl, rec := serve(t, http.StatusOK, `{"status": "succeeded", "namespace": "argo-test", "items": []}`)

			got, err := cl.Info(context.Background(), when.namespace)
			if err != nil {
				t.Fatal(err)
			}
			if got.Namespace != "argo-test" {
				t.Errorf("unexpected response: %+v", got)
			}
			if rec.Path != "/api/v1/info/" || rec.Query != then.query {
				t.Errorf("unexpected request: %s ? %s", rec.Path, rec.Query)
			}
		}
	}

	t.Run("namespace is passed as query", theory(
		When{namespace: "argo-test"},
		Then{query: "namespace=argo-test"},
	))
	t.Run("empty namespace is not sent", theory(
		When{namespace: ""},
		Then{query: ""},
	))
}
