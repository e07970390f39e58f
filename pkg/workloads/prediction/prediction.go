// Package prediction predicts container resources of workload cases.
package prediction

import (
	"context"
	"fmt"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/shopspring/decimal"
)

// Prediction is resources a workload case needs.
//
// CPUs are in cores, and memories are in MiB.
type Prediction struct {
	RequestCPU    decimal.Decimal `json:"requestCpu"`
	RequestMemory decimal.Decimal `json:"requestMemory"`
	LimitCPU      decimal.Decimal `json:"limitCpu"`
	LimitMemory   decimal.Decimal `json:"limitMemory"`
}

func (p Prediction) Equal(o Prediction) bool {
	return p.RequestCPU.Equal(o.RequestCPU) &&
		p.RequestMemory.Equal(o.RequestMemory) &&
		p.LimitCPU.Equal(o.LimitCPU) &&
		p.LimitMemory.Equal(o.LimitMemory)
}

type Predictor interface {
	// Predict returns resources for the workload case.
	//
	// Errors unwrap to errors.ErrPredictionService.
	Predict(ctx context.Context, workloadCase string) (Prediction, error)
}

func serviceError(format string, args ...any) error {
	return xe.WrapAsOuter(
		fmt.Errorf("%w: "+format, append([]any{kerr.ErrPredictionService}, args...)...),
		1,
	)
}
