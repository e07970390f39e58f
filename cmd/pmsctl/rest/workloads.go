package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

func (c *client) do(ctx context.Context, method string, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := c.apipath(path)
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpclient.Do(req)
}

func (c *client) Submit(ctx context.Context, sreq apiwl.SubmitRequest) (apiwl.Outcome, error) {
	payload, err := json.Marshal(sreq)
	if err != nil {
		return apiwl.Outcome{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, "strato", nil, bytes.NewReader(payload))
	if err != nil {
		return apiwl.Outcome{}, err
	}
	defer resp.Body.Close()

	var outcome apiwl.Outcome
	err = unmarshalJsonResponse(resp, &outcome)
	return outcome, err
}

func (c *client) Sync(ctx context.Context) (apiwl.SyncReport, error) {
	resp, err := c.do(ctx, http.MethodPost, "sync", nil, nil)
	if err != nil {
		return apiwl.SyncReport{}, err
	}
	defer resp.Body.Close()

	var report apiwl.SyncReport
	err = unmarshalJsonResponse(resp, &report)
	return report, err
}

func (c *client) Predict(ctx context.Context, steps []byte) (apiwl.Predicted, error) {
	resp, err := c.do(ctx, http.MethodPost, "predict", nil, bytes.NewReader(steps))
	if err != nil {
		return apiwl.Predicted{}, err
	}
	defer resp.Body.Close()

	var predicted apiwl.Predicted
	err = unmarshalJsonResponse(resp, &predicted)
	return predicted, err
}

func (c *client) Workloads(ctx context.Context) (apiwl.WorkloadList, error) {
	resp, err := c.do(ctx, http.MethodGet, "workloads", nil, nil)
	if err != nil {
		return apiwl.WorkloadList{}, err
	}
	defer resp.Body.Close()

	var list apiwl.WorkloadList
	err = unmarshalJsonResponse(resp, &list)
	return list, err
}

func (c *client) Info(ctx context.Context, namespace string) (apiwl.WorkflowList, error) {
	query := url.Values{}
	if namespace != "" {
		query.Set("namespace", namespace)
	}
	resp, err := c.do(ctx, http.MethodGet, "info", query, nil)
	if err != nil {
		return apiwl.WorkflowList{}, err
	}
	defer resp.Body.Close()

	var list apiwl.WorkflowList
	err = unmarshalJsonResponse(resp, &list)
	return list, err
}
