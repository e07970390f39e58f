// Package k8s reads Argo Workflows from Kubernetes.
package k8s

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/keti-strato/pms/pkg/domain/workflow"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/logger"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

var WorkflowResource = schema.GroupVersionResource{
	Group:    "argoproj.io",
	Version:  "v1alpha1",
	Resource: "workflows",
}

type k8sWorkflow struct {
	client dynamic.Interface
	now    func() time.Time
	log    logger.Logger
}

type Option func(*k8sWorkflow) *k8sWorkflow

func WithClock(now func() time.Time) Option {
	return func(k *k8sWorkflow) *k8sWorkflow {
		k.now = now
		return k
	}
}

func WithLogger(l logger.Logger) Option {
	return func(k *k8sWorkflow) *k8sWorkflow {
		k.log = l
		return k
	}
}

func New(client dynamic.Interface, options ...Option) workflow.Interface {
	k := &k8sWorkflow{client: client, now: time.Now, log: logger.Discard()}
	for _, opt := range options {
		k = opt(k)
	}
	return k
}

// List returns workflows in the namespace, ordered by name.
func (k *k8sWorkflow) List(ctx context.Context, namespace string) ([]workflow.Status, error) {
	if namespace == "" {
		namespace = workflow.DefaultNamespace
	}
	list, err := k.client.Resource(WorkflowResource).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, xe.Wrap(err)
	}

	now := k.now()
	result := make([]workflow.Status, 0, len(list.Items))
	for _, item := range list.Items {
		result = append(result, k.status(item, now))
	}
	slices.SortFunc(result, func(a, b workflow.Status) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (k *k8sWorkflow) status(item unstructured.Unstructured, now time.Time) workflow.Status {
	phase, _, _ := unstructured.NestedString(item.Object, "status", "phase")
	st := workflow.Status{Name: item.GetName(), Phase: phase}

	started, ok := k.timestamp(item, "startedAt")
	if !ok {
		return st
	}
	finished, ok := k.timestamp(item, "finishedAt")
	if !ok {
		finished = now
	}
	st.Duration = finished.Sub(started)
	return st
}

func (k *k8sWorkflow) timestamp(item unstructured.Unstructured, field string) (time.Time, bool) {
	v, found, err := unstructured.NestedString(item.Object, "status", field)
	if err != nil || !found || v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		k.log.Warnf("workflow %s: status.%s is not a timestamp: %s", item.GetName(), field, v)
		return time.Time{}, false
	}
	return t, true
}
