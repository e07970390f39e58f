// Package document reads and writes workload configuration documents.
//
// A configuration document is an Argo Workflow compiled by Kubeflow Pipelines,
// sent as base64 encoded YAML. Only parts pms touches are typed.
// Other parts are kept as they are, while key order may change.
package document

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// annotation of Workflow, holding JSON object with "name" and "description" of the pipeline.
	AnnotationPipelineSpec = "pipelines.kubeflow.org/pipeline_spec"

	// label of steps, telling which principal submits the workload.
	LabelWorkloadOwner = "ml.workload.id"

	// label of steps, telling which workload case the step is. It keys resource predictions.
	LabelWorkloadCase = "ml.workload"
)

type Workflow struct {
	Metadata Metadata     `yaml:"metadata"`
	Spec     WorkflowSpec `yaml:"spec"`

	Rest map[string]any `yaml:",inline"`
}

type Metadata struct {
	Annotations map[string]string `yaml:"annotations,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

type WorkflowSpec struct {
	Templates []Step `yaml:"templates"`

	Rest map[string]any `yaml:",inline"`
}

// Step is a template of Workflow.
type Step struct {
	Name      string     `yaml:"name,omitempty"`
	Metadata  *Metadata  `yaml:"metadata,omitempty"`
	Container *Container `yaml:"container,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

// Label returns the label value of the step, and whether it is set.
func (s *Step) Label(key string) (string, bool) {
	if s.Metadata == nil || s.Metadata.Labels == nil {
		return "", false
	}
	v, ok := s.Metadata.Labels[key]
	return v, ok
}

// SetLabel sets a label on the step. Metadata is created if missing.
func (s *Step) SetLabel(key string, value string) {
	if s.Metadata == nil {
		s.Metadata = &Metadata{}
	}
	if s.Metadata.Labels == nil {
		s.Metadata.Labels = map[string]string{}
	}
	s.Metadata.Labels[key] = value
}

type Container struct {
	Resources *ResourceSpec `yaml:"resources,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

type ResourceSpec struct {
	Requests *ResourceList `yaml:"requests,omitempty"`
	Limits   *ResourceList `yaml:"limits,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

// PipelineSpec is the pipeline description embedded in a Workflow.
type PipelineSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func formatError(format string, args ...any) error {
	return xe.WrapAsOuter(fmt.Errorf("%w: "+format, append([]any{kerr.ErrDocumentFormat}, args...)...), 1)
}

// Decode reads base64 encoded YAML as Workflow.
func Decode(encoded string) (*Workflow, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, formatError("not base64: %w", err)
	}
	return Parse(raw)
}

// Parse reads YAML as Workflow.
func Parse(raw []byte) (*Workflow, error) {
	wf := new(Workflow)
	if err := yaml.Unmarshal(raw, wf); err != nil {
		return nil, formatError("not a workflow: %w", err)
	}
	return wf, nil
}

// Encode writes w as base64 encoded YAML.
func (w *Workflow) Encode() (string, error) {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return "", xe.Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return "", xe.Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// PipelineSpec reads the pipeline spec annotation.
func (w *Workflow) PipelineSpec() (PipelineSpec, error) {
	raw, ok := w.Metadata.Annotations[AnnotationPipelineSpec]
	if !ok {
		return PipelineSpec{}, formatError("annotation %s is missing", AnnotationPipelineSpec)
	}
	ps := PipelineSpec{}
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return PipelineSpec{}, formatError("annotation %s is not a JSON object: %w", AnnotationPipelineSpec, err)
	}
	if ps.Name == "" {
		return PipelineSpec{}, formatError("annotation %s has no name", AnnotationPipelineSpec)
	}
	return ps, nil
}

// LabelSteps sets a label on every step.
func (w *Workflow) LabelSteps(key string, value string) {
	for i := range w.Spec.Templates {
		w.Spec.Templates[i].SetLabel(key, value)
	}
}

// ParseSteps reads a list of steps from JSON or YAML.
func ParseSteps(raw []byte) ([]Step, error) {
	steps := []Step{}
	if err := yaml.Unmarshal(raw, &steps); err != nil {
		return nil, formatError("not a list of steps: %w", err)
	}
	return steps, nil
}

// ToJSON converts v into JSON, as it is written in YAML.
func ToJSON(v any) ([]byte, error) {
	y, err := yaml.Marshal(v)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	var generic any
	if err := yaml.Unmarshal(y, &generic); err != nil {
		return nil, xe.Wrap(err)
	}
	return json.Marshal(jsonCompatible(generic))
}

// jsonCompatible replaces map[any]any, which yaml can produce for non-string keys.
func jsonCompatible(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = jsonCompatible(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = jsonCompatible(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = jsonCompatible(e)
		}
		return x
	}
	return v
}
