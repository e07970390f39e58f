// Package mirror reconciles the local workload mirror with the platform's listing.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/keti-strato/pms/pkg/domain"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	"github.com/keti-strato/pms/pkg/domain/workload/platform"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/logger"
	"github.com/keti-strato/pms/pkg/metrics"
)

// ItemFailure is a change which the store refused. Other changes are kept.
type ItemFailure struct {
	WorkloadIds []string
	Operation   string
	Err         error
}

// Report is a summary of a reconciliation pass.
type Report struct {
	Deleted   int
	Inserted  int
	Refreshed int
	Skipped   int

	Warnings []string
	Failures []ItemFailure
}

type Synchronizer struct {
	store        kdb.WorkloadInterface
	platform     platform.Interface
	exemptPrefix string
	refreshKnown bool
	log          logger.Logger
}

type Option func(*Synchronizer) *Synchronizer

// WithExemptPrefix changes the prefix of workload ids kept regardless of listings.
// Default is domain.ExemptPrefix. Empty prefix exempts nothing.
func WithExemptPrefix(prefix string) Option {
	return func(s *Synchronizer) *Synchronizer {
		s.exemptPrefix = prefix
		return s
	}
}

// WithRefreshKnown makes reconciliation overwrite mirrored workloads with listed ones.
//
// By default, workloads both mirrored and listed are left untouched.
func WithRefreshKnown(refresh bool) Option {
	return func(s *Synchronizer) *Synchronizer {
		s.refreshKnown = refresh
		return s
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Synchronizer) *Synchronizer {
		s.log = l
		return s
	}
}

func New(store kdb.WorkloadInterface, p platform.Interface, options ...Option) *Synchronizer {
	s := &Synchronizer{
		store:        store,
		platform:     p,
		exemptPrefix: domain.ExemptPrefix,
		log:          logger.Discard(),
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

// Sync fetches the platform's listing and reconciles the mirror with it.
func (s *Synchronizer) Sync(ctx context.Context) (Report, error) {
	snapshot, err := s.platform.List(ctx)
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues(metrics.Bool(false)).Inc()
		return Report{}, xe.Wrap(err)
	}
	return s.Reconcile(ctx, snapshot)
}

// Reconcile makes the mirror hold workloads of snapshot.
//
// Mirrored workloads absent from snapshot are removed unless they are exempt.
// Listed workloads absent from the mirror are inserted, unless they lack required fields.
//
// Store failures on an item are reported in Report.Failures, and reconciliation goes on.
// Error is returned when the mirror can not be read or committed. Then nothing is changed.
func (s *Synchronizer) Reconcile(ctx context.Context, snapshot []domain.ObservedWorkload) (Report, error) {
	report := Report{}
	mirrored := 0

	err := s.store.Sync(ctx, func(b kdb.Batch) error {
		report = Report{}

		existingIds, err := b.Ids(ctx)
		if err != nil {
			return err
		}
		existing := make(map[string]struct{}, len(existingIds))
		for _, id := range existingIds {
			existing[id] = struct{}{}
		}

		incoming := map[string]struct{}{}
		for _, ow := range snapshot {
			if id := ow.Record.WorkloadId; id != "" {
				incoming[id] = struct{}{}
			}
		}

		toDelete := []string{}
		for _, id := range existingIds {
			if _, ok := incoming[id]; ok {
				continue
			}
			if domain.IsExempt(id, s.exemptPrefix) {
				continue
			}
			toDelete = append(toDelete, id)
		}

		if len(toDelete) != 0 {
			err := b.Try(ctx, func(b kdb.Batch) error {
				n, err := b.Delete(ctx, toDelete...)
				report.Deleted = n
				return err
			})
			if err != nil {
				report.Deleted = 0
				report.Failures = append(report.Failures, ItemFailure{
					WorkloadIds: toDelete, Operation: "delete", Err: err,
				})
				s.log.Errorf("mirror: failed to delete %v: %s", toDelete, err)
			}
		}

		seen := map[string]struct{}{}
		for i, ow := range snapshot {
			id := ow.Record.WorkloadId
			if id == "" {
				report.Skipped += 1
				report.Warnings = append(
					report.Warnings,
					fmt.Sprintf("item #%d is skipped: no workload id", i),
				)
				continue
			}
			if _, dup := seen[id]; dup {
				report.Skipped += 1
				report.Warnings = append(
					report.Warnings,
					fmt.Sprintf("item #%d is skipped: workload id %s is listed twice", i, id),
				)
				continue
			}
			seen[id] = struct{}{}

			_, known := existing[id]
			if known && !s.refreshKnown {
				continue
			}

			if !ow.Complete() {
				report.Skipped += 1
				report.Warnings = append(
					report.Warnings,
					fmt.Sprintf(
						"workload %s is skipped: missing fields: %s",
						id, strings.Join(ow.Missing, ", "),
					),
				)
				continue
			}

			rec := ow.Record
			if err := b.Try(ctx, func(b kdb.Batch) error { return b.Upsert(ctx, rec) }); err != nil {
				operation := "insert"
				if known {
					operation = "refresh"
				}
				report.Failures = append(report.Failures, ItemFailure{
					WorkloadIds: []string{id}, Operation: operation, Err: err,
				})
				s.log.Errorf("mirror: failed to %s %s: %s", operation, id, err)
				continue
			}
			if known {
				report.Refreshed += 1
			} else {
				report.Inserted += 1
			}
		}

		ids, err := b.Ids(ctx)
		if err != nil {
			return err
		}
		mirrored = len(ids)
		return nil
	})
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues(metrics.Bool(false)).Inc()
		return Report{}, xe.Wrap(err)
	}

	for _, w := range report.Warnings {
		s.log.Warnf("mirror: %s", w)
	}
	s.log.Infof(
		"mirror: reconciled. deleted = %d, inserted = %d, refreshed = %d, skipped = %d, failed = %d",
		report.Deleted, report.Inserted, report.Refreshed, report.Skipped, len(report.Failures),
	)

	metrics.ReconciliationsTotal.WithLabelValues(metrics.Bool(true)).Inc()
	metrics.ReconciledWorkloadsTotal.WithLabelValues("deleted").Add(float64(report.Deleted))
	metrics.ReconciledWorkloadsTotal.WithLabelValues("inserted").Add(float64(report.Inserted))
	metrics.ReconciledWorkloadsTotal.WithLabelValues("refreshed").Add(float64(report.Refreshed))
	metrics.ReconciledWorkloadsTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
	metrics.ReconciledWorkloadsTotal.WithLabelValues("failed").Add(float64(len(report.Failures)))
	metrics.MirroredWorkloads.Set(float64(mirrored))

	return report, nil
}
