package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/keti-strato/pms/pkg/domain"
)

const (
	// response code of succeeded requests.
	CodeSuccess = "10001"

	// response code of requests rejected by the platform.
	CodeServerError = "10002"
)

// flexString is a string in JSON, which can be sent as a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) != 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("neither string nor number: %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

// stepCodes is a list of step codes in JSON.
//
// The platform sends it as an array, or as a string containing JSON array.
type stepCodes []string

func (s *stepCodes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = []string{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("step codes should be an array or string: %s", string(b))
	}
	str = strings.TrimSpace(str)
	if str == "" {
		*s = []string{}
		return nil
	}
	if strings.HasPrefix(str, "[") {
		if err := json.Unmarshal([]byte(str), &arr); err != nil {
			return fmt.Errorf("step codes is not a JSON array: %w", err)
		}
		*s = arr
		return nil
	}
	*s = []string{str}
	return nil
}

type envelope struct {
	Code    flexString      `json:"code"`
	Message flexString      `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type applyPayload struct {
	ClusterIdx  int      `json:"clusterIdx"`
	Description string   `json:"description"`
	MlId        string   `json:"mlId"`
	MlStepCode  []string `json:"mlStepCode"`
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace"`
	UserId      string   `json:"userId"`
	Yaml        string   `json:"yaml"`
	Overwrite   int      `json:"overwrite"`
}

type applyResult struct {
	Success  bool                       `json:"success"`
	Workload map[string]json.RawMessage `json:"workload"`
}

type deletePayload struct {
	MlId string `json:"mlId"`
}

// wire names of fields which every listed workload should have.
var requiredFields = []string{
	"id", "mlId", "name", "namespace", "description", "mlStepCode", "status", "userId", "clusterIdx",
}

// decodeWorkload reads a workload item of the platform.
//
// Fields which are absent or not readable are reported in Missing.
func decodeWorkload(item map[string]json.RawMessage) domain.ObservedWorkload {
	ow := domain.ObservedWorkload{Record: domain.WorkloadRecord{StepCodes: []string{}}}
	r := &ow.Record

	str := func(dest *string) func(json.RawMessage) error {
		return func(raw json.RawMessage) error {
			var f flexString
			if err := json.Unmarshal(raw, &f); err != nil {
				return err
			}
			*dest = string(f)
			return nil
		}
	}
	decoders := map[string]func(json.RawMessage) error{
		"id":          str(&r.Id),
		"mlId":        str(&r.WorkloadId),
		"name":        str(&r.Name),
		"namespace":   str(&r.Namespace),
		"description": str(&r.Description),
		"status":      str(&r.Status),
		"userId":      str(&r.UserId),
		"clusterIdx":  str(&r.ClusterIdx),
		"mlStepCode": func(raw json.RawMessage) error {
			var sc stepCodes
			if err := json.Unmarshal(raw, &sc); err != nil {
				return err
			}
			r.StepCodes = sc
			return nil
		},
	}

	for _, field := range requiredFields {
		raw, ok := item[field]
		if !ok {
			ow.Missing = append(ow.Missing, field)
			continue
		}
		if err := decoders[field](raw); err != nil {
			ow.Missing = append(ow.Missing, field)
		}
	}
	return ow
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
