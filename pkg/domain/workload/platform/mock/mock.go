package mock

import (
	"context"
	"errors"

	"github.com/keti-strato/pms/pkg/domain"
	"github.com/keti-strato/pms/pkg/domain/workload/platform"
)

type Platform struct {
	Impl struct {
		List   func(context.Context) ([]domain.ObservedWorkload, error)
		Apply  func(context.Context, platform.Submission) (domain.WorkloadRecord, error)
		Delete func(context.Context, string) error
	}
}

var _ platform.Interface = &Platform{}

func New() *Platform {
	return &Platform{}
}

func (m *Platform) List(ctx context.Context) ([]domain.ObservedWorkload, error) {
	if m.Impl.List == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.List(ctx)
}

func (m *Platform) Apply(ctx context.Context, s platform.Submission) (domain.WorkloadRecord, error) {
	if m.Impl.Apply == nil {
		return domain.WorkloadRecord{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Apply(ctx, s)
}

func (m *Platform) Delete(ctx context.Context, workloadId string) error {
	if m.Impl.Delete == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.Delete(ctx, workloadId)
}
