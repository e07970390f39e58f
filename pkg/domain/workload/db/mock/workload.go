// this package provide "mock" implementation of the workload mirror for testing.
package mock

import (
	"context"
	"errors"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
)

type WorkloadInterface struct {
	Impl struct {
		Ids          func(context.Context) ([]string, error)
		Get          func(context.Context, string) (domain.WorkloadRecord, error)
		FindByName   func(context.Context, string) ([]domain.WorkloadRecord, error)
		List         func(context.Context) ([]domain.WorkloadRecord, error)
		Upsert       func(context.Context, domain.WorkloadRecord) error
		Delete       func(context.Context, string) (bool, error)
		DeleteByName func(context.Context, string) ([]string, error)
		Sync         func(context.Context, func(kdb.Batch) error) error
		Reserve      func(context.Context, string, time.Duration, func([]string) (string, error)) (string, error)
		Release      func(context.Context, string) error
	}
}

var _ kdb.WorkloadInterface = &WorkloadInterface{}

var errNotImplemented = errors.New("[MOCK] not implemented")

func New() *WorkloadInterface {
	return &WorkloadInterface{}
}

func (m *WorkloadInterface) Ids(ctx context.Context) ([]string, error) {
	if m.Impl.Ids == nil {
		return nil, errNotImplemented
	}
	return m.Impl.Ids(ctx)
}

func (m *WorkloadInterface) Get(ctx context.Context, workloadId string) (domain.WorkloadRecord, error) {
	if m.Impl.Get == nil {
		return domain.WorkloadRecord{}, errNotImplemented
	}
	return m.Impl.Get(ctx, workloadId)
}

func (m *WorkloadInterface) FindByName(ctx context.Context, name string) ([]domain.WorkloadRecord, error) {
	if m.Impl.FindByName == nil {
		return nil, errNotImplemented
	}
	return m.Impl.FindByName(ctx, name)
}

func (m *WorkloadInterface) List(ctx context.Context) ([]domain.WorkloadRecord, error) {
	if m.Impl.List == nil {
		return nil, errNotImplemented
	}
	return m.Impl.List(ctx)
}

func (m *WorkloadInterface) Upsert(ctx context.Context, r domain.WorkloadRecord) error {
	if m.Impl.Upsert == nil {
		return errNotImplemented
	}
	return m.Impl.Upsert(ctx, r)
}

func (m *WorkloadInterface) Delete(ctx context.Context, workloadId string) (bool, error) {
	if m.Impl.Delete == nil {
		return false, errNotImplemented
	}
	return m.Impl.Delete(ctx, workloadId)
}

func (m *WorkloadInterface) DeleteByName(ctx context.Context, name string) ([]string, error) {
	if m.Impl.DeleteByName == nil {
		return nil, errNotImplemented
	}
	return m.Impl.DeleteByName(ctx, name)
}

func (m *WorkloadInterface) Sync(ctx context.Context, f func(kdb.Batch) error) error {
	if m.Impl.Sync == nil {
		return errNotImplemented
	}
	return m.Impl.Sync(ctx, f)
}

func (m *WorkloadInterface) Reserve(
	ctx context.Context, prefix string, ttl time.Duration, pick func([]string) (string, error),
) (string, error) {
	if m.Impl.Reserve == nil {
		return "", errNotImplemented
	}
	return m.Impl.Reserve(ctx, prefix, ttl, pick)
}

func (m *WorkloadInterface) Release(ctx context.Context, id string) error {
	if m.Impl.Release == nil {
		return errNotImplemented
	}
	return m.Impl.Release(ctx, id)
}
