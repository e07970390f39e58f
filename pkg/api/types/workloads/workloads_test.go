package workloads_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/pkg/api/types/workloads"
	"github.com/keti-strato/pms/pkg/domain"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/keti-strato/pms/pkg/workloads/submission"
)

func TestSubmitRequest_AsRequest(t *testing.T) {
	t.Run("cluster defaults to 1", func(t *testing.T) {
		var req workloads.SubmitRequest
		if err := json.Unmarshal([]byte(`{"yaml": "ZG9j", "retry": true}`), &req); err != nil {
			t.Fatal(err)
		}
		want := submission.Request{Document: "ZG9j", ClusterIdx: 1, Retry: true}
		if got := req.AsRequest(); !cmp.Equal(got, want) {
			t.Errorf("unexpected request: %+v", got)
		}
	})

	t.Run("cluster is kept", func(t *testing.T) {
		var req workloads.SubmitRequest
		if err := json.Unmarshal(
			[]byte(`{"yaml": "ZG9j", "cluster": 3, "predict": true, "userId": "someone"}`), &req,
		); err != nil {
			t.Fatal(err)
		}
		want := submission.Request{Document: "ZG9j", ClusterIdx: 3, Predict: true, UserId: "someone"}
		if got := req.AsRequest(); !cmp.Equal(got, want) {
			t.Errorf("unexpected request: %+v", got)
		}
	})
}

func TestComposeOutcome(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		got := workloads.ComposeOutcome(submission.Outcome{
			Status:     submission.StatusSucceeded,
			Stage:      submission.Succeeded,
			WorkloadId: "keti002",
			Workload: &domain.WorkloadRecord{
				Id: "3", WorkloadId: "keti002", Name: "train", Namespace: "keti-crd",
				Status: "Pending", UserId: "jhpark", ClusterIdx: "1",
			},
		})
		raw, err := json.Marshal(got)
		if err != nil {
			t.Fatal(err)
		}
		want := `{"status":"succeeded","stage":"SUCCEEDED","mlId":"keti002","overwrite":0,` +
			`"workload":{"id":"3","mlId":"keti002","name":"train","namespace":"keti-crd","description":"",` +
			`"mlStepCode":[],"status":"Pending","userId":"jhpark","clusterIdx":"1"}}`
		if string(raw) != want {
			t.Errorf("unexpected json:\n===actual===\n%s\n===expected===\n%s", raw, want)
		}
	})

	t.Run("failure", func(t *testing.T) {
		got := workloads.ComposeOutcome(submission.Outcome{
			Status:    submission.StatusFailure,
			Stage:     submission.Submitting,
			Overwrite: 1,
			Error:     &submission.OutcomeError{Kind: "RemoteApiError", Message: "unreachable"},
		})
		want := workloads.Outcome{
			Status:    "failure",
			Stage:     "SUBMITTING",
			Overwrite: 1,
			Error:     &workloads.Failure{Kind: "RemoteApiError", Message: "unreachable"},
		}
		if !cmp.Equal(got, want) {
			t.Errorf("unexpected outcome: %s", cmp.Diff(want, got))
		}
	})
}

func TestComposeSyncReport(t *testing.T) {
	got := workloads.ComposeSyncReport(mirror.Report{
		Deleted: 1, Inserted: 2, Skipped: 1,
		Warnings: []string{"keti009 lacks status"},
		Failures: []mirror.ItemFailure{
			{WorkloadIds: []string{"keti010"}, Operation: "upsert", Err: errors.New("fake")},
		},
	})
	want := workloads.SyncReport{
		Status: "succeeded", Deleted: 1, Inserted: 2, Skipped: 1,
		Warnings: []string{"keti009 lacks status"},
		Failures: []workloads.ItemFailure{
			{MlIds: []string{"keti010"}, Operation: "upsert", Error: "fake"},
		},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected report: %s", cmp.Diff(want, got))
	}
}
