// Package resources fills container resources of workload steps with predictions.
package resources

import (
	"context"

	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/logger"
	"github.com/keti-strato/pms/pkg/workloads/document"
	"github.com/keti-strato/pms/pkg/workloads/prediction"
)

const (
	// workload case which runs without GPU.
	CasePreprocess = "preprocess"

	// GPU limit set when a step does not tell.
	DefaultGPULimit = "1"
)

type Annotator struct {
	predictor  prediction.Predictor
	caseLabel  string
	gpuFree    map[string]bool
	defaultGPU string
	log        logger.Logger
}

type Option func(*Annotator) *Annotator

// WithCaseLabel changes the label telling workload cases. Default is document.LabelWorkloadCase.
func WithCaseLabel(label string) Option {
	return func(a *Annotator) *Annotator {
		a.caseLabel = label
		return a
	}
}

// WithGPUFreeCases replaces workload cases which get no default GPU limit.
// Default is CasePreprocess only.
func WithGPUFreeCases(cases ...string) Option {
	return func(a *Annotator) *Annotator {
		a.gpuFree = map[string]bool{}
		for _, c := range cases {
			a.gpuFree[c] = true
		}
		return a
	}
}

// WithDefaultGPULimit changes the GPU limit set when a step does not tell. Default is DefaultGPULimit.
func WithDefaultGPULimit(q string) Option {
	return func(a *Annotator) *Annotator {
		a.defaultGPU = q
		return a
	}
}

func WithLogger(l logger.Logger) Option {
	return func(a *Annotator) *Annotator {
		a.log = l
		return a
	}
}

func New(predictor prediction.Predictor, options ...Option) *Annotator {
	a := &Annotator{
		predictor:  predictor,
		caseLabel:  document.LabelWorkloadCase,
		gpuFree:    map[string]bool{CasePreprocess: true},
		defaultGPU: DefaultGPULimit,
		log:        logger.Discard(),
	}
	for _, opt := range options {
		a = opt(a)
	}
	return a
}

// Annotate sets resources of the step.
//
// Steps without container are left as they are.
//
// Steps without workload case label get null cpu and memory for both requests and limits,
// so the platform decides.
//
// Labeled steps get predicted cpu and memory for requests and limits.
// GPU requests are removed, and GPU limit is set to the default unless
// the step tells or its case is GPU-free.
//
// When prediction fails, the step is left as it is and the error is returned.
func (a *Annotator) Annotate(ctx context.Context, step *document.Step) error {
	if step.Container == nil {
		return nil
	}

	workloadCase, ok := step.Label(a.caseLabel)
	if !ok || workloadCase == "" {
		step.Container.Resources = &document.ResourceSpec{
			Requests: &document.ResourceList{CPU: document.Null(), Memory: document.Null()},
			Limits:   &document.ResourceList{CPU: document.Null(), Memory: document.Null()},
		}
		return nil
	}

	p, err := a.predictor.Predict(ctx, workloadCase)
	if err != nil {
		return xe.WrapWithNote("step "+step.Name, err)
	}

	reqCPU := document.Value(FormatCPU(p.RequestCPU))
	reqMem := document.Value(FormatMemory(p.RequestMemory))
	limCPU := document.Value(FormatCPU(p.LimitCPU))
	limMem := document.Value(FormatMemory(p.LimitMemory))
	gpuFree := a.gpuFree[workloadCase]

	res := step.Container.Resources
	if res == nil {
		limits := &document.ResourceList{CPU: limCPU, Memory: limMem}
		if !gpuFree {
			limits.GPU = document.Value(a.defaultGPU)
		}
		step.Container.Resources = &document.ResourceSpec{
			Requests: &document.ResourceList{CPU: reqCPU, Memory: reqMem},
			Limits:   limits,
		}
		a.log.Debugf("resources: step %s (%s) gets resources", step.Name, workloadCase)
		return nil
	}

	if res.Requests == nil {
		res.Requests = &document.ResourceList{}
	}
	if res.Limits == nil {
		res.Limits = &document.ResourceList{}
	}
	if res.Limits.GPU.IsMissing() && !gpuFree {
		res.Limits.GPU = document.Value(a.defaultGPU)
	}
	res.Requests.GPU = document.Quantity{}

	res.Requests.CPU = reqCPU
	res.Requests.Memory = reqMem
	res.Limits.CPU = limCPU
	res.Limits.Memory = limMem

	a.log.Debugf("resources: step %s (%s) is updated", step.Name, workloadCase)
	return nil
}

// AnnotateAll annotates steps in order. It stops at the first error.
//
// Steps before the failed one keep their annotations.
func (a *Annotator) AnnotateAll(ctx context.Context, steps []document.Step) error {
	for i := range steps {
		if err := a.Annotate(ctx, &steps[i]); err != nil {
			return err
		}
	}
	return nil
}
