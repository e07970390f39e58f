// Package remote is a client of the workload platform's HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	"github.com/keti-strato/pms/pkg/domain/workload/platform"
	xe "github.com/keti-strato/pms/pkg/errors"
)

const (
	pathList   = "interface/api/v2/ml/ml/list"
	pathApply  = "interface/api/v2/ml/apply"
	pathDelete = "interface/api/v2/ml/delete"
)

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

type Option func(*client) *client

// WithHTTPClient replaces the http client. Default is a new http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) *client {
		c.httpclient = hc
		return c
	}
}

// WithTimeout limits each request. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *client) *client {
		hc := *c.httpclient
		hc.Timeout = d
		c.httpclient = &hc
		return c
	}
}

// New creates a client of the platform at apiRoot, authorized with token.
func New(apiRoot string, token string, options ...Option) platform.Interface {
	c := &client{
		httpclient: new(http.Client),
		api:        strings.TrimSuffix(apiRoot, "/"),
		token:      token,
	}
	for _, opt := range options {
		c = opt(c)
	}
	return c
}

func (c *client) apipath(path ...string) string {
	trimmed := make([]string, 0, len(path)+1)
	trimmed = append(trimmed, c.api)
	for _, p := range path {
		trimmed = append(trimmed, strings.Trim(p, "/"))
	}
	return strings.Join(trimmed, "/")
}

// call sends payload as JSON and reads the response envelope.
//
// Errors are *errors.TransportError.
func (c *client) call(ctx context.Context, operation string, method string, path string, payload any) (envelope, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, 0, xe.Wrap(&kerr.TransportError{Operation: operation, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apipath(path), bytes.NewReader(body))
	if err != nil {
		return envelope{}, 0, xe.Wrap(&kerr.TransportError{Operation: operation, Err: err})
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return envelope{}, 0, xe.Wrap(&kerr.TransportError{Operation: operation, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, resp.StatusCode, xe.Wrap(&kerr.TransportError{
			Operation: operation, Status: resp.StatusCode, Err: err,
		})
	}

	env := envelope{}
	if err := json.Unmarshal(raw, &env); err != nil || env.Code == "" {
		cause := errors.New("response is not a platform message")
		if err != nil {
			cause = fmt.Errorf("%w: %w", cause, err)
		}
		if resp.StatusCode < 200 || 300 <= resp.StatusCode {
			cause = fmt.Errorf("%s: %w", http.StatusText(resp.StatusCode), cause)
		}
		return envelope{}, resp.StatusCode, xe.Wrap(&kerr.TransportError{
			Operation: operation, Status: resp.StatusCode, Err: cause,
		})
	}
	return env, resp.StatusCode, nil
}

func rejected(operation string, env envelope, status int) error {
	message := string(env.Message)
	if env.Code != CodeServerError && env.Code != CodeSuccess {
		message = fmt.Sprintf("unexpected response (http status %d): %s", status, message)
	}
	return xe.WrapAsOuter(&kerr.RemoteError{
		Operation: operation, Code: string(env.Code), Message: message,
	}, 1)
}

func (c *client) List(ctx context.Context) ([]domain.ObservedWorkload, error) {
	env, status, err := c.call(ctx, "list workloads", http.MethodPost, pathList, struct{}{})
	if err != nil {
		return nil, err
	}
	if env.Code != CodeSuccess {
		return nil, rejected("list workloads", env, status)
	}

	items := []map[string]json.RawMessage{}
	if len(env.Result) != 0 && !bytes.Equal(env.Result, []byte("null")) {
		if err := json.Unmarshal(env.Result, &items); err != nil {
			return nil, xe.Wrap(&kerr.TransportError{
				Operation: "list workloads", Status: status,
				Err: fmt.Errorf("result is not a list of workloads: %w", err),
			})
		}
	}

	observed := make([]domain.ObservedWorkload, 0, len(items))
	for _, item := range items {
		observed = append(observed, decodeWorkload(item))
	}
	return observed, nil
}

func (c *client) Apply(ctx context.Context, s platform.Submission) (domain.WorkloadRecord, error) {
	stepCodes := s.StepCodes
	if stepCodes == nil {
		stepCodes = []string{}
	}
	payload := applyPayload{
		ClusterIdx:  s.ClusterIdx,
		Description: s.Description,
		MlId:        s.WorkloadId,
		MlStepCode:  stepCodes,
		Name:        s.Name,
		Namespace:   s.Namespace,
		UserId:      s.UserId,
		Yaml:        s.Document,
		Overwrite:   s.Overwrite,
	}

	env, status, err := c.call(ctx, "apply workload", http.MethodPost, pathApply, payload)
	if err != nil {
		return domain.WorkloadRecord{}, err
	}
	if env.Code != CodeSuccess {
		return domain.WorkloadRecord{}, rejected("apply workload", env, status)
	}

	result := applyResult{}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return domain.WorkloadRecord{}, xe.Wrap(&kerr.TransportError{
			Operation: "apply workload", Status: status,
			Err: fmt.Errorf("result is not readable: %w", err),
		})
	}
	if !result.Success {
		return domain.WorkloadRecord{}, xe.Wrap(&kerr.RemoteError{
			Operation: "apply workload", Code: string(env.Code),
			Message: "not succeeded: " + string(env.Message),
		})
	}

	observed := decodeWorkload(result.Workload)
	return complement(observed, s), nil
}

// complement fills fields the platform did not report with what is submitted.
func complement(observed domain.ObservedWorkload, s platform.Submission) domain.WorkloadRecord {
	r := observed.Record
	for _, field := range observed.Missing {
		switch field {
		case "mlId":
			r.WorkloadId = s.WorkloadId
		case "name":
			r.Name = s.Name
		case "namespace":
			r.Namespace = s.Namespace
		case "description":
			r.Description = s.Description
		case "mlStepCode":
			r.StepCodes = append([]string{}, s.StepCodes...)
		case "userId":
			r.UserId = s.UserId
		case "clusterIdx":
			r.ClusterIdx = itoa(s.ClusterIdx)
		}
	}
	return r
}

func (c *client) Delete(ctx context.Context, workloadId string) error {
	env, status, err := c.call(
		ctx, "delete workload", http.MethodDelete, pathDelete, deletePayload{MlId: workloadId},
	)
	if err != nil {
		return err
	}
	if env.Code != CodeSuccess {
		return rejected("delete workload", env, status)
	}
	return nil
}
