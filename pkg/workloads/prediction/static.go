package prediction

import (
	"context"

	"github.com/keti-strato/pms/pkg/metrics"
)

type static struct {
	byCase   map[string]Prediction
	fallback *Prediction
}

// NewStatic returns a Predictor answering fixed predictions by workload case.
//
// Unknown cases get fallback. When fallback is nil, unknown cases are errors.
func NewStatic(byCase map[string]Prediction, fallback *Prediction) Predictor {
	m := make(map[string]Prediction, len(byCase))
	for k, v := range byCase {
		m[k] = v
	}
	return &static{byCase: m, fallback: fallback}
}

func (s *static) Predict(ctx context.Context, workloadCase string) (Prediction, error) {
	if p, ok := s.byCase[workloadCase]; ok {
		metrics.PredictionsTotal.WithLabelValues("static", "true").Inc()
		return p, nil
	}
	if s.fallback != nil {
		metrics.PredictionsTotal.WithLabelValues("static", "true").Inc()
		return *s.fallback, nil
	}
	metrics.PredictionsTotal.WithLabelValues("static", "false").Inc()
	return Prediction{}, serviceError("no prediction for case %s", workloadCase)
}
