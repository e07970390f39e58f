package db

import (
	"context"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
)

// Reader reads the workload mirror.
type Reader interface {
	// Ids returns workload ids of all mirrored workloads, in ascending order.
	Ids(context.Context) ([]string, error)

	// Get returns the workload with the workload id.
	//
	// Returns an error unwrapping to ErrMissing when there are no such workload.
	Get(ctx context.Context, workloadId string) (domain.WorkloadRecord, error)

	// FindByName returns workloads having the name.
	FindByName(ctx context.Context, name string) ([]domain.WorkloadRecord, error)

	// List returns all mirrored workloads ordered by workload id.
	List(context.Context) ([]domain.WorkloadRecord, error)
}

// Batch is a view of the mirror inside a transaction.
type Batch interface {
	Ids(context.Context) ([]string, error)

	// Upsert inserts the record, or replaces the record having the same workload id.
	Upsert(context.Context, domain.WorkloadRecord) error

	// Delete removes workloads by id, and returns how many are removed.
	//
	// Unknown ids are ignored.
	Delete(ctx context.Context, workloadIds ...string) (int, error)

	// Try runs f in a nested transaction.
	//
	// When f returns error, changes made by f are rolled back and the error is returned.
	// The outer transaction goes on.
	Try(ctx context.Context, f func(Batch) error) error
}

type WorkloadInterface interface {
	Reader

	// Upsert inserts the record, or replaces the record having the same workload id.
	Upsert(context.Context, domain.WorkloadRecord) error

	// Delete removes the workload by workload id.
	//
	// Returns true if it is removed, or false if it has not been mirrored.
	Delete(ctx context.Context, workloadId string) (bool, error)

	// DeleteByName removes workloads having the name.
	//
	// Returns workload ids of removed ones.
	DeleteByName(ctx context.Context, name string) ([]string, error)

	// Sync runs f in a transaction.
	//
	// When f returns error, all changes are rolled back.
	// Otherwise, changes are committed at once.
	Sync(ctx context.Context, f func(Batch) error) error

	// Reserve allocates an id exclusively.
	//
	// While the store is locked, pick is called with taken ids: ids of mirrored workloads
	// and unexpired reservations starting with prefix.
	// The id pick returns is reserved until ttl passes or it is released.
	//
	// Reserve returns what pick returned.
	Reserve(ctx context.Context, prefix string, ttl time.Duration, pick func(taken []string) (string, error)) (string, error)

	// Release drops the reservation of the id. Unknown ids are ignored.
	Release(ctx context.Context, id string) error
}
