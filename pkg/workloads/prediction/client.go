package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/keti-strato/pms/pkg/metrics"
	"github.com/shopspring/decimal"
)

// the prediction service answers cpu in 1/100 cores.
var cpuScale = decimal.NewFromInt(100)

// maximum nesting of prediction arrays.
const maxDepth = 4

type client struct {
	httpclient *http.Client
	url        string
}

// NewClient returns a Predictor asking the prediction service at url.
//
// The service receives {"case": <workload case>}, and answers
//
//	{"result": {"requests": [[[cpu, memory], ...]], "limits": [[[cpu, memory], ...]]}}
//
// where cpu is in 1/100 cores and memory is in MiB.
// Only the first pair of each is used. Nesting can be shallower.
func NewClient(url string, timeout time.Duration) Predictor {
	return &client{httpclient: &http.Client{Timeout: timeout}, url: url}
}

type predictRequest struct {
	Case string `json:"case"`
}

type predictResponse struct {
	Result *struct {
		Requests json.RawMessage `json:"requests"`
		Limits   json.RawMessage `json:"limits"`
	} `json:"result"`
}

func (c *client) Predict(ctx context.Context, workloadCase string) (Prediction, error) {
	p, err := c.predict(ctx, workloadCase)
	metrics.PredictionsTotal.WithLabelValues("service", metrics.Bool(err == nil)).Inc()
	return p, err
}

func (c *client) predict(ctx context.Context, workloadCase string) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Case: workloadCase})
	if err != nil {
		return Prediction{}, serviceError("%w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, serviceError("%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return Prediction{}, serviceError("unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, serviceError("can not read response: %w", err)
	}
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return Prediction{}, serviceError("http status %d: %s", resp.StatusCode, string(raw))
	}

	pr := predictResponse{}
	if err := json.Unmarshal(raw, &pr); err != nil {
		return Prediction{}, serviceError("response is not JSON: %w", err)
	}
	if pr.Result == nil {
		return Prediction{}, serviceError("response has no result")
	}

	reqCPU, reqMem, err := firstPair(pr.Result.Requests, maxDepth)
	if err != nil {
		return Prediction{}, serviceError("requests: %w", err)
	}
	limCPU, limMem, err := firstPair(pr.Result.Limits, maxDepth)
	if err != nil {
		return Prediction{}, serviceError("limits: %w", err)
	}

	return Prediction{
		RequestCPU:    reqCPU.Div(cpuScale),
		RequestMemory: reqMem,
		LimitCPU:      limCPU.Div(cpuScale),
		LimitMemory:   limMem,
	}, nil
}

// firstPair finds the first array of numbers in nested arrays, and returns its first two numbers.
func firstPair(raw json.RawMessage, depth int) (decimal.Decimal, decimal.Decimal, error) {
	if depth <= 0 {
		return decimal.Zero, decimal.Zero, errTooDeep
	}

	items := []json.RawMessage{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return decimal.Zero, decimal.Zero, errNotArray
	}
	if len(items) == 0 {
		return decimal.Zero, decimal.Zero, errEmpty
	}

	if first := bytes.TrimSpace(items[0]); len(first) != 0 && first[0] == '[' {
		return firstPair(first, depth-1)
	}

	if len(items) < 2 {
		return decimal.Zero, decimal.Zero, errShort
	}
	var cpu, mem decimal.Decimal
	if err := json.Unmarshal(items[0], &cpu); err != nil {
		return decimal.Zero, decimal.Zero, errNotNumber
	}
	if err := json.Unmarshal(items[1], &mem); err != nil {
		return decimal.Zero, decimal.Zero, errNotNumber
	}
	return cpu, mem, nil
}
