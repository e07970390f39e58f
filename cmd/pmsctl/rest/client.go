package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

type Client interface {
	// Submit a workflow document to pmsd.
	//
	// The returned Outcome is meaningful even when error is not nil,
	// as far as the server responded with one.
	Submit(ctx context.Context, req apiwl.SubmitRequest) (apiwl.Outcome, error)

	// Sync makes pmsd reconcile its mirror with the platform.
	Sync(ctx context.Context) (apiwl.SyncReport, error)

	// Predict annotates steps with predicted resources.
	//
	// steps should be a JSON array of steps.
	Predict(ctx context.Context, steps []byte) (apiwl.Predicted, error)

	// Workloads lists mirrored workloads.
	Workloads(ctx context.Context) (apiwl.WorkloadList, error)

	// Info lists workflows in the namespace.
	//
	// When namespace is empty, server side default is used.
	Info(ctx context.Context, namespace string) (apiwl.WorkflowList, error)
}

type client struct {
	httpclient *http.Client
	api        string
}

// NewClient returns a Client for pmsd listening at server, like "http://localhost:8080".
func NewClient(server string) (Client, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("%w: server url is broken: %s", err, server)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url should be http(s): %s", server)
	}
	return &client{
		httpclient: new(http.Client),
		api:        strings.TrimSuffix(server, "/") + "/api/v1",
	}, nil
}

func (c *client) apipath(path ...string) string {
	trimmed := make([]string, 0, len(path)+1)
	trimmed = append(trimmed, c.api)
	for _, p := range path {
		trimmed = append(trimmed, strings.Trim(p, "/"))
	}
	return strings.Join(trimmed, "/") + "/"
}
