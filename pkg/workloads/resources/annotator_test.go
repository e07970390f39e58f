package resources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	"github.com/keti-strato/pms/pkg/workloads/document"
	"github.com/keti-strato/pms/pkg/workloads/prediction"
	"github.com/keti-strato/pms/pkg/workloads/resources"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var predicted = prediction.Prediction{
	RequestCPU:    dec("1.5"),
	RequestMemory: dec("512.3333"),
	LimitCPU:      dec("3"),
	LimitMemory:   dec("1024"),
}

type fakePredictor struct {
	cases []string
	err   error
}

func (f *fakePredictor) Predict(_ context.Context, c string) (prediction.Prediction, error) {
	f.cases = append(f.cases, c)
	if f.err != nil {
		return prediction.Prediction{}, f.err
	}
	return predicted, nil
}

func labeled(workloadCase string, res *document.ResourceSpec) document.Step {
	s := document.Step{Name: "step", Container: &document.Container{Resources: res}}
	if workloadCase != "" {
		s.SetLabel(document.LabelWorkloadCase, workloadCase)
	}
	return s
}

var v = document.Value

func TestAnnotate(t *testing.T) {
	type Then struct {
		resources *document.ResourceSpec
		predicted []string
	}

	theory := func(when document.Step, then Then) func(*testing.T) {
		return func(t *testing.T) {
			pred := &fakePredictor{}
			testee := resources.New(pred)

			if err := testee.Annotate(context.Background(), &when); err != nil {
				t.Fatal(err)
			}

			var actual *document.ResourceSpec
			if when.Container != nil {
				actual = when.Container.Resources
			}
			if diff := cmp.Diff(then.resources, actual); diff != "" {
				t.Errorf("resources (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(then.predicted, pred.cases); diff != "" {
				t.Errorf("predicted cases (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("step without container is untouched", theory(
		document.Step{Name: "dag"},
		Then{resources: nil},
	))

	t.Run("unlabeled step gets null resources", theory(
		labeled("", &document.ResourceSpec{
			Requests: &document.ResourceList{CPU: v("4"), GPU: v("1")},
		}),
		Then{resources: &document.ResourceSpec{
			Requests: &document.ResourceList{CPU: document.Null(), Memory: document.Null()},
			Limits:   &document.ResourceList{CPU: document.Null(), Memory: document.Null()},
		}},
	))

	t.Run("labeled step without resources gets synthesized ones", theory(
		labeled("train", nil),
		Then{
			resources: &document.ResourceSpec{
				Requests: &document.ResourceList{CPU: v("1.5"), Memory: v("512.33Mi")},
				Limits:   &document.ResourceList{CPU: v("3"), Memory: v("1024Mi"), GPU: v("1")},
			},
			predicted: []string{"train"},
		},
	))

	t.Run("GPU-free case without resources gets no GPU", theory(
		labeled("preprocess", nil),
		Then{
			resources: &document.ResourceSpec{
				Requests: &document.ResourceList{CPU: v("1.5"), Memory: v("512.33Mi")},
				Limits:   &document.ResourceList{CPU: v("3"), Memory: v("1024Mi")},
			},
			predicted: []string{"preprocess"},
		},
	))

	t.Run("existing resources are overwritten with predictions", theory(
		labeled("train", &document.ResourceSpec{
			Requests: &document.ResourceList{
				CPU: v("8"), GPU: v("2"),
				Others: map[string]document.Quantity{"ephemeral-storage": v("1Gi")},
			},
			Limits: &document.ResourceList{Memory: v("4G")},
		}),
		Then{
			resources: &document.ResourceSpec{
				Requests: &document.ResourceList{
					CPU: v("1.5"), Memory: v("512.33Mi"),
					Others: map[string]document.Quantity{"ephemeral-storage": v("1Gi")},
				},
				Limits: &document.ResourceList{CPU: v("3"), Memory: v("1024Mi"), GPU: v("1")},
			},
			predicted: []string{"train"},
		},
	))

	t.Run("GPU limit of the step is kept", theory(
		labeled("train", &document.ResourceSpec{
			Limits: &document.ResourceList{GPU: v("4")},
		}),
		Then{
			resources: &document.ResourceSpec{
				Requests: &document.ResourceList{CPU: v("1.5"), Memory: v("512.33Mi")},
				Limits:   &document.ResourceList{CPU: v("3"), Memory: v("1024Mi"), GPU: v("4")},
			},
			predicted: []string{"train"},
		},
	))

	t.Run("GPU-free case with resources gets no default GPU", theory(
		labeled("preprocess", &document.ResourceSpec{
			Requests: &document.ResourceList{GPU: v("1")},
		}),
		Then{
			resources: &document.ResourceSpec{
				Requests: &document.ResourceList{CPU: v("1.5"), Memory: v("512.33Mi")},
				Limits:   &document.ResourceList{CPU: v("3"), Memory: v("1024Mi")},
			},
			predicted: []string{"preprocess"},
		},
	))
}

func TestAnnotate_PredictionFailure(t *testing.T) {
	original := &document.ResourceSpec{
		Requests: &document.ResourceList{CPU: v("8")},
	}
	step := labeled("train", original)
	pred := &fakePredictor{err: errors.Join(kerr.ErrPredictionService, errors.New("fake"))}

	err := resources.New(pred).Annotate(context.Background(), &step)
	if !errors.Is(err, kerr.ErrPredictionService) {
		t.Errorf("unexpected error: %v", err)
	}

	expected := &document.ResourceSpec{Requests: &document.ResourceList{CPU: v("8")}}
	if diff := cmp.Diff(expected, step.Container.Resources); diff != "" {
		t.Errorf("step is changed (-want +got):\n%s", diff)
	}
}

func TestAnnotateAll(t *testing.T) {
	steps := []document.Step{
		labeled("train", nil),
		{Name: "dag"},
		labeled("", nil),
	}
	pred := &fakePredictor{}

	if err := resources.New(pred, resources.WithGPUFreeCases()).AnnotateAll(context.Background(), steps); err != nil {
		t.Fatal(err)
	}
	if !steps[0].Container.Resources.Limits.GPU.Equal(v("1")) {
		t.Errorf("unexpected gpu: %s", steps[0].Container.Resources.Limits.GPU)
	}
	if steps[1].Container != nil {
		t.Errorf("dag step is changed")
	}
	if !steps[2].Container.Resources.Requests.CPU.IsNull() {
		t.Errorf("unlabeled step is not nulled")
	}
	if diff := cmp.Diff([]string{"train"}, pred.cases); diff != "" {
		t.Errorf("predicted cases (-want +got):\n%s", diff)
	}
}
