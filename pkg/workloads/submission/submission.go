// Package submission submits workloads to the platform, keeping the mirror in step.
//
// A submission goes through stages:
//
//	SYNCING -> RESOLVING_IDENTITY -> PATCHING_DOCUMENT -> SUBMITTING -> FOLDING_RESULT
//
// and ends in SUCCEEDED or FAILED.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	"github.com/keti-strato/pms/pkg/domain/workload/platform"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/keti-strato/pms/pkg/logger"
	"github.com/keti-strato/pms/pkg/metrics"
	"github.com/keti-strato/pms/pkg/workloads/document"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/keti-strato/pms/pkg/workloads/retryname"
)

type Stage string

const (
	Syncing           Stage = "SYNCING"
	ResolvingIdentity Stage = "RESOLVING_IDENTITY"
	PatchingDocument  Stage = "PATCHING_DOCUMENT"
	Submitting        Stage = "SUBMITTING"
	FoldingResult     Stage = "FOLDING_RESULT"
	Succeeded         Stage = "SUCCEEDED"
	Failed            Stage = "FAILED"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailure   = "failure"
)

// Request is a submission of a configuration document.
type Request struct {
	// base64 encoded YAML of Argo Workflow.
	Document string

	ClusterIdx int

	// Retry tells the document replaces a previous submission.
	Retry bool

	// Predict requests resource annotation for this submission.
	Predict bool

	// UserId submitting. Empty means the configured principal.
	UserId string
}

type OutcomeError struct {
	Kind    string
	Message string
}

// Outcome is the result of a submission.
type Outcome struct {
	Status string

	// Stage where the submission ends. For failures, it is the stage which failed.
	Stage Stage

	WorkloadId string
	Overwrite  int

	// Workload accepted by the platform. Nil unless succeeded.
	Workload *domain.WorkloadRecord

	// Nil unless failed.
	Error *OutcomeError

	Warnings []string
}

type Syncer interface {
	Sync(context.Context) (mirror.Report, error)
}

type Allocator interface {
	Allocate(context.Context) (string, error)
	Release(ctx context.Context, id string) error
}

type Annotator interface {
	AnnotateAll(context.Context, []document.Step) error
}

type Config struct {
	// Namespace where workloads run.
	Namespace string

	// Step codes of submitted workloads.
	StepCodes []string

	// UserId of submissions without one. It labels steps, too.
	Principal string

	// When false, retry requests are taken as new submissions.
	RetryEnabled bool

	// When true, all submissions get resource annotations.
	AnnotateResources bool

	SyncTimeout   time.Duration
	DeleteTimeout time.Duration
	SubmitTimeout time.Duration
}

type Orchestrator struct {
	conf      Config
	syncer    Syncer
	store     kdb.WorkloadInterface
	allocator Allocator
	platform  platform.Interface
	annotator Annotator
	log       logger.Logger
}

type Option func(*Orchestrator) *Orchestrator

// WithAnnotator enables resource annotation.
func WithAnnotator(a Annotator) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.annotator = a
		return o
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.log = l
		return o
	}
}

func New(
	conf Config,
	syncer Syncer,
	store kdb.WorkloadInterface,
	allocator Allocator,
	p platform.Interface,
	options ...Option,
) *Orchestrator {
	o := &Orchestrator{
		conf:      conf,
		syncer:    syncer,
		store:     store,
		allocator: allocator,
		platform:  p,
		log:       logger.Discard(),
	}
	for _, opt := range options {
		o = opt(o)
	}
	return o
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// submission is the state of a Submit call.
type submission struct {
	req       Request
	stage     Stage
	principal string

	workflow    *document.Workflow
	pipeline    document.PipelineSpec
	workloadId  string
	overwrite   int
	reservation string
	encoded     string
	accepted    domain.WorkloadRecord
	warnings    []string
}

func (s *submission) warn(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Submit runs a submission through.
//
// Returned error is nil if and only if the outcome is succeeded.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Outcome, error) {
	begin := time.Now()
	s := &submission{req: req, principal: req.UserId}
	if s.principal == "" {
		s.principal = o.conf.Principal
	}

	defer func() {
		if s.reservation == "" {
			return
		}
		// reservation outlives ctx, so release it with a fresh one.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := o.allocator.Release(rctx, s.reservation); err != nil {
			o.log.Warnf("submission: failed to release %s: %s", s.reservation, err)
		}
	}()

	steps := []struct {
		stage Stage
		run   func(context.Context, *submission) error
	}{
		{Syncing, o.sync},
		{ResolvingIdentity, o.resolveIdentity},
		{PatchingDocument, o.patchDocument},
		{Submitting, o.submit},
		{FoldingResult, o.fold},
	}

	for _, step := range steps {
		s.stage = step.stage
		o.log.Debugf("submission: %s", step.stage)
		if err := step.run(ctx, s); err != nil {
			return o.failed(s, begin, err)
		}
	}

	s.stage = Succeeded
	accepted := s.accepted
	metrics.SubmissionsTotal.WithLabelValues(metrics.Bool(req.Retry), StatusSucceeded).Inc()
	metrics.SubmissionDurationSeconds.Observe(time.Since(begin).Seconds())
	o.log.Infof(
		"submission: %s (%s) is submitted. overwrite = %d",
		s.workloadId, s.pipeline.Name, s.overwrite,
	)
	return Outcome{
		Status:     StatusSucceeded,
		Stage:      Succeeded,
		WorkloadId: s.workloadId,
		Overwrite:  s.overwrite,
		Workload:   &accepted,
		Warnings:   s.warnings,
	}, nil
}

func (o *Orchestrator) failed(s *submission, begin time.Time, err error) (Outcome, error) {
	kind := kerr.Kind(err)
	metrics.SubmissionsTotal.WithLabelValues(metrics.Bool(s.req.Retry), StatusFailure).Inc()
	metrics.SubmissionFailuresTotal.WithLabelValues(string(s.stage), kind).Inc()
	metrics.SubmissionDurationSeconds.Observe(time.Since(begin).Seconds())
	o.log.Errorf("submission: failed at %s: %s", s.stage, err)

	return Outcome{
		Status:     StatusFailure,
		Stage:      s.stage,
		WorkloadId: s.workloadId,
		Overwrite:  s.overwrite,
		Error:      &OutcomeError{Kind: kind, Message: message(err)},
		Warnings:   s.warnings,
	}, err
}

// message is err without locations.
func message(err error) string {
	var remote *kerr.RemoteError
	if errors.As(err, &remote) {
		return remote.Error()
	}
	return xe.Message(err)
}

// sync is best-effort. Failures are warned, and the submission goes on.
func (o *Orchestrator) sync(ctx context.Context, s *submission) error {
	sctx, cancel := withTimeout(ctx, o.conf.SyncTimeout)
	defer cancel()

	report, err := o.syncer.Sync(sctx)
	if err != nil {
		o.log.Warnf("submission: mirror is not synchronized: %s", err)
		s.warn("mirror is not synchronized: %s", message(err))
		return nil
	}
	o.log.Debugf(
		"submission: mirror is synchronized. deleted = %d, inserted = %d, skipped = %d",
		report.Deleted, report.Inserted, report.Skipped,
	)
	return nil
}

func (o *Orchestrator) resolveIdentity(ctx context.Context, s *submission) error {
	wf, err := document.Decode(s.req.Document)
	if err != nil {
		return err
	}
	ps, err := wf.PipelineSpec()
	if err != nil {
		return err
	}
	s.workflow = wf
	s.pipeline = ps

	if s.req.Retry && !o.conf.RetryEnabled {
		s.warn("retry is disabled. %s is submitted as a new workload", ps.Name)
	}

	if s.req.Retry && o.conf.RetryEnabled {
		s.overwrite = 1
		id, err := o.replacePredecessor(ctx, s, ps.Name)
		if err != nil {
			return err
		}
		s.workloadId = id
		return nil
	}

	id, err := o.allocator.Allocate(ctx)
	if err != nil {
		return err
	}
	s.reservation = id
	s.workloadId = id
	s.overwrite = 0
	return nil
}

// replacePredecessor removes the workload which the retry replaces.
//
// It returns the workload id of the predecessor,
// or domain.UnresolvedWorkloadId when it is not found or the platform refuses to delete it.
func (o *Orchestrator) replacePredecessor(ctx context.Context, s *submission, name string) (string, error) {
	predecessor, err := retryname.Predecessor(name)
	if err != nil {
		return "", err
	}

	found, err := o.store.FindByName(ctx, predecessor)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		s.warn("predecessor %s is not found", predecessor)
		return domain.UnresolvedWorkloadId, nil
	}
	workloadId := found[0].WorkloadId

	dctx, cancel := withTimeout(ctx, o.conf.DeleteTimeout)
	defer cancel()
	if err := o.platform.Delete(dctx, workloadId); err != nil {
		var rejected *kerr.RemoteError
		if errors.As(err, &rejected) {
			o.log.Warnf("submission: platform refused to delete %s: %s", workloadId, err)
			s.warn("predecessor %s (%s) is not deleted: %s", predecessor, workloadId, rejected.Message)
			return domain.UnresolvedWorkloadId, nil
		}
		return "", err
	}

	deleted, err := o.store.DeleteByName(ctx, predecessor)
	if err != nil {
		o.log.Warnf("submission: %s is deleted from platform, but not from mirror: %s", predecessor, err)
		s.warn("predecessor %s is left in mirror", predecessor)
	} else {
		o.log.Infof("submission: predecessor %s (%v) is deleted", predecessor, deleted)
	}
	return workloadId, nil
}

func (o *Orchestrator) patchDocument(ctx context.Context, s *submission) error {
	s.workflow.LabelSteps(document.LabelWorkloadOwner, s.principal)

	if s.req.Predict || o.conf.AnnotateResources {
		if o.annotator == nil {
			s.warn("resource annotation is not available")
		} else if err := o.annotator.AnnotateAll(ctx, s.workflow.Spec.Templates); err != nil {
			return err
		}
	}

	encoded, err := s.workflow.Encode()
	if err != nil {
		return xe.Wrap(fmt.Errorf("%w: %w", kerr.ErrDocumentFormat, err))
	}
	s.encoded = encoded
	return nil
}

func (o *Orchestrator) submit(ctx context.Context, s *submission) error {
	sctx, cancel := withTimeout(ctx, o.conf.SubmitTimeout)
	defer cancel()

	accepted, err := o.platform.Apply(sctx, platform.Submission{
		ClusterIdx:  s.req.ClusterIdx,
		Description: s.pipeline.Description,
		WorkloadId:  s.workloadId,
		StepCodes:   o.conf.StepCodes,
		Name:        s.pipeline.Name,
		Namespace:   o.conf.Namespace,
		UserId:      s.principal,
		Document:    s.encoded,
		Overwrite:   s.overwrite,
	})
	if err != nil {
		var rejected *kerr.RemoteError
		if errors.As(err, &rejected) {
			// rejections are results, so they are folded.
			s.stage = FoldingResult
		}
		return err
	}
	s.accepted = accepted
	return nil
}

// fold mirrors the accepted workload.
//
// Failures are warned only: the workload is on the platform already,
// and the next synchronization mirrors it.
func (o *Orchestrator) fold(ctx context.Context, s *submission) error {
	if s.accepted.WorkloadId == "" {
		s.accepted.WorkloadId = s.workloadId
	}
	if err := o.store.Upsert(ctx, s.accepted); err != nil {
		o.log.Errorf("submission: %s is not mirrored: %s", s.accepted.WorkloadId, err)
		s.warn("workload %s is not mirrored yet", s.accepted.WorkloadId)
	}
	return nil
}
