// Package memory is a workload mirror held in process memory.
//
// It is for single-replica deployments without a database, and for tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
)

type memWorkload struct {
	lock         sync.Mutex
	records      map[string]domain.WorkloadRecord
	reservations map[string]time.Time
	now          func() time.Time
}

type Option func(*memWorkload) *memWorkload

// WithClock replaces the clock used to expire reservations.
func WithClock(now func() time.Time) Option {
	return func(m *memWorkload) *memWorkload {
		m.now = now
		return m
	}
}

// WithRecords fills the mirror in advance.
func WithRecords(records ...domain.WorkloadRecord) Option {
	return func(m *memWorkload) *memWorkload {
		for _, r := range records {
			m.records[r.WorkloadId] = clone(r)
		}
		return m
	}
}

func New(options ...Option) kdb.WorkloadInterface {
	m := &memWorkload{
		records:      map[string]domain.WorkloadRecord{},
		reservations: map[string]time.Time{},
		now:          time.Now,
	}
	for _, opt := range options {
		m = opt(m)
	}
	return m
}

func clone(r domain.WorkloadRecord) domain.WorkloadRecord {
	r.StepCodes = slices.Clone(r.StepCodes)
	return r
}

func sortedIds(records map[string]domain.WorkloadRecord) []string {
	ids := slices.Sorted(maps.Keys(records))
	if ids == nil {
		return []string{}
	}
	return ids
}

func (m *memWorkload) Ids(ctx context.Context) ([]string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return sortedIds(m.records), nil
}

func (m *memWorkload) Get(ctx context.Context, workloadId string) (domain.WorkloadRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	r, ok := m.records[workloadId]
	if !ok {
		return domain.WorkloadRecord{}, kdb.Missing{Table: "workload", Identity: workloadId}
	}
	return clone(r), nil
}

func (m *memWorkload) FindByName(ctx context.Context, name string) ([]domain.WorkloadRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	found := []domain.WorkloadRecord{}
	for _, id := range sortedIds(m.records) {
		if r := m.records[id]; r.Name == name {
			found = append(found, clone(r))
		}
	}
	return found, nil
}

func (m *memWorkload) List(ctx context.Context) ([]domain.WorkloadRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	list := make([]domain.WorkloadRecord, 0, len(m.records))
	for _, id := range sortedIds(m.records) {
		list = append(list, clone(m.records[id]))
	}
	return list, nil
}

func (m *memWorkload) Upsert(ctx context.Context, r domain.WorkloadRecord) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.records[r.WorkloadId] = clone(r)
	return nil
}

func (m *memWorkload) Delete(ctx context.Context, workloadId string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	_, ok := m.records[workloadId]
	delete(m.records, workloadId)
	return ok, nil
}

func (m *memWorkload) DeleteByName(ctx context.Context, name string) ([]string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	deleted := []string{}
	for _, id := range sortedIds(m.records) {
		if m.records[id].Name == name {
			delete(m.records, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

func (m *memWorkload) Sync(ctx context.Context, f func(kdb.Batch) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	b := &batch{records: maps.Clone(m.records)}
	if err := f(b); err != nil {
		return err
	}
	m.records = b.records
	return nil
}

func (m *memWorkload) Reserve(
	ctx context.Context, prefix string, ttl time.Duration, pick func([]string) (string, error),
) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	taken := []string{}
	for id := range m.records {
		if strings.HasPrefix(id, prefix) {
			taken = append(taken, id)
		}
	}
	for id, expiry := range m.reservations {
		if !now.Before(expiry) {
			delete(m.reservations, id)
			continue
		}
		if strings.HasPrefix(id, prefix) {
			taken = append(taken, id)
		}
	}
	slices.Sort(taken)

	id, err := pick(taken)
	if err != nil {
		return "", err
	}
	m.reservations[id] = now.Add(ttl)
	return id, nil
}

func (m *memWorkload) Release(ctx context.Context, id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.reservations, id)
	return nil
}

// batch works on a copy of records. It is committed by replacing the original.
type batch struct {
	records map[string]domain.WorkloadRecord
}

func (b *batch) Ids(ctx context.Context) ([]string, error) {
	return sortedIds(b.records), nil
}

func (b *batch) Upsert(ctx context.Context, r domain.WorkloadRecord) error {
	b.records[r.WorkloadId] = clone(r)
	return nil
}

func (b *batch) Delete(ctx context.Context, workloadIds ...string) (int, error) {
	n := 0
	for _, id := range workloadIds {
		if _, ok := b.records[id]; ok {
			delete(b.records, id)
			n += 1
		}
	}
	return n, nil
}

func (b *batch) Try(ctx context.Context, f func(kdb.Batch) error) error {
	nested := &batch{records: maps.Clone(b.records)}
	if err := f(nested); err != nil {
		return err
	}
	b.records = nested.records
	return nil
}
