package mock

import (
	"context"
	"testing"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

type Calls[T any] []T

type Client struct {
	t *testing.T

	Impl struct {
		Submit    func(context.Context, apiwl.SubmitRequest) (apiwl.Outcome, error)
		Sync      func(context.Context) (apiwl.SyncReport, error)
		Predict   func(context.Context, []byte) (apiwl.Predicted, error)
		Workloads func(context.Context) (apiwl.WorkloadList, error)
		Info      func(context.Context, string) (apiwl.WorkflowList, error)
	}

	Calls struct {
		Submit  Calls[apiwl.SubmitRequest]
		Predict Calls[[]byte]
		Info    Calls[string]
	}
}

var _ rest.Client = &Client{}

func New(t *testing.T) *Client {
	return &Client{t: t}
}

func (m *Client) Submit(ctx context.Context, req apiwl.SubmitRequest) (apiwl.Outcome, error) {
	m.t.Helper()
	m.Calls.Submit = append(m.Calls.Submit, req)
	if m.Impl.Submit == nil {
		m.t.Fatal("Submit is not implemented")
	}
	return m.Impl.Submit(ctx, req)
}

func (m *Client) Sync(ctx context.Context) (apiwl.SyncReport, error) {
	m.t.Helper()
	if m.Impl.Sync == nil {
		m.t.Fatal("Sync is not implemented")
	}
	return m.Impl.Sync(ctx)
}

func (m *Client) Predict(ctx context.Context, steps []byte) (apiwl.Predicted, error) {
	m.t.Helper()
	m.Calls.Predict = append(m.Calls.Predict, steps)
	if m.Impl.Predict == nil {
		m.t.Fatal("Predict is not implemented")
	}
	return m.Impl.Predict(ctx, steps)
}

func (m *Client) Workloads(ctx context.Context) (apiwl.WorkloadList, error) {
	m.t.Helper()
	if m.Impl.Workloads == nil {
		m.t.Fatal("Workloads is not implemented")
	}
	return m.Impl.Workloads(ctx)
}

func (m *Client) Info(ctx context.Context, namespace string) (apiwl.WorkflowList, error) {
	m.t.Helper()
	m.Calls.Info = append(m.Calls.Info, namespace)
	if m.Impl.Info == nil {
		m.t.Fatal("Info is not implemented")
	}
	return m.Impl.Info(ctx, namespace)
}
