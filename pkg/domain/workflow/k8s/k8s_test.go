package k8s_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/pkg/domain/workflow"
	"github.com/keti-strato/pms/pkg/domain/workflow/k8s"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynfake "k8s.io/client-go/dynamic/fake"
)

func argoWorkflow(namespace, name string, status map[string]any) *unstructured.Unstructured {
	obj := map[string]any{
		"apiVersion": "argoproj.io/v1alpha1",
		"kind":       "Workflow",
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
	}
	if status != nil {
		obj["status"] = status
	}
	return &unstructured.Unstructured{Object: obj}
}

func TestList(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	client := dynfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{k8s.WorkflowResource: "WorkflowList"},
		argoWorkflow("argo-test", "finished", map[string]any{
			"phase":      "Succeeded",
			"startedAt":  "2024-05-01T10:00:00Z",
			"finishedAt": "2024-05-01T11:02:03Z",
		}),
		argoWorkflow("argo-test", "running", map[string]any{
			"phase":     "Running",
			"startedAt": "2024-05-01T11:59:30Z",
		}),
		argoWorkflow("argo-test", "pending", nil),
		argoWorkflow("other", "elsewhere", map[string]any{"phase": "Failed"}),
	)

	testee := k8s.New(client, k8s.WithClock(func() time.Time { return now }))

	t.Run("it lists workflows in the namespace", func(t *testing.T) {
		got, err := testee.List(context.Background(), "argo-test")
		if err != nil {
			t.Fatal(err)
		}
		want := []workflow.Status{
			{Name: "finished", Phase: "Succeeded", Duration: time.Hour + 2*time.Minute + 3*time.Second},
			{Name: "pending", Phase: "", Duration: 0},
			{Name: "running", Phase: "Running", Duration: 30 * time.Second},
		}
		if !cmp.Equal(got, want) {
			t.Errorf("unexpected workflows: %s", cmp.Diff(want, got))
		}
	})

	t.Run("namespace defaults to argo-test", func(t *testing.T) {
		got, err := testee.List(context.Background(), "")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Errorf("unexpected workflows: %+v", got)
		}
	})

	t.Run("empty namespace", func(t *testing.T) {
		got, err := testee.List(context.Background(), "nothing-here")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("unexpected workflows: %+v", got)
		}
	})
}
