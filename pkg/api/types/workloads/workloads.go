// Package workloads is wire types of the pms API.
package workloads

import (
	"encoding/json"

	"github.com/keti-strato/pms/pkg/domain"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/keti-strato/pms/pkg/workloads/submission"
)

const (
	StatusSucceeded = submission.StatusSucceeded
	StatusFailure   = submission.StatusFailure
)

// DefaultCluster is the cluster index of submissions without one.
const DefaultCluster = 1

type SubmitRequest struct {
	// base64 encoded YAML of Argo Workflow.
	Yaml string `json:"yaml"`

	Cluster *int   `json:"cluster,omitempty"`
	Retry   bool   `json:"retry,omitempty"`
	Predict bool   `json:"predict,omitempty"`
	UserId  string `json:"userId,omitempty"`
}

func (r SubmitRequest) AsRequest() submission.Request {
	cluster := DefaultCluster
	if r.Cluster != nil {
		cluster = *r.Cluster
	}
	return submission.Request{
		Document:   r.Yaml,
		ClusterIdx: cluster,
		Retry:      r.Retry,
		Predict:    r.Predict,
		UserId:     r.UserId,
	}
}

type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Workload struct {
	Id          string   `json:"id"`
	MlId        string   `json:"mlId"`
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace"`
	Description string   `json:"description"`
	MlStepCode  []string `json:"mlStepCode"`
	Status      string   `json:"status"`
	UserId      string   `json:"userId"`
	ClusterIdx  string   `json:"clusterIdx"`
}

func ComposeWorkload(r domain.WorkloadRecord) Workload {
	steps := r.StepCodes
	if steps == nil {
		steps = []string{}
	}
	return Workload{
		Id:          r.Id,
		MlId:        r.WorkloadId,
		Name:        r.Name,
		Namespace:   r.Namespace,
		Description: r.Description,
		MlStepCode:  steps,
		Status:      r.Status,
		UserId:      r.UserId,
		ClusterIdx:  r.ClusterIdx,
	}
}

// Outcome is the response of a submission.
type Outcome struct {
	Status    string    `json:"status"`
	Stage     string    `json:"stage"`
	MlId      string    `json:"mlId,omitempty"`
	Overwrite int       `json:"overwrite"`
	Workload  *Workload `json:"workload,omitempty"`
	Error     *Failure  `json:"error,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
}

func ComposeOutcome(o submission.Outcome) Outcome {
	out := Outcome{
		Status:    o.Status,
		Stage:     string(o.Stage),
		MlId:      o.WorkloadId,
		Overwrite: o.Overwrite,
		Warnings:  o.Warnings,
	}
	if o.Workload != nil {
		w := ComposeWorkload(*o.Workload)
		out.Workload = &w
	}
	if o.Error != nil {
		out.Error = &Failure{Kind: o.Error.Kind, Message: o.Error.Message}
	}
	return out
}

type ItemFailure struct {
	MlIds     []string `json:"mlIds"`
	Operation string   `json:"operation"`
	Error     string   `json:"error"`
}

// SyncReport is the response of a synchronization.
type SyncReport struct {
	Status    string        `json:"status"`
	Deleted   int           `json:"deleted"`
	Inserted  int           `json:"inserted"`
	Refreshed int           `json:"refreshed"`
	Skipped   int           `json:"skipped"`
	Warnings  []string      `json:"warnings,omitempty"`
	Failures  []ItemFailure `json:"failures,omitempty"`
	Error     *Failure      `json:"error,omitempty"`
}

func ComposeSyncReport(r mirror.Report) SyncReport {
	failures := make([]ItemFailure, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, ItemFailure{
			MlIds: f.WorkloadIds, Operation: f.Operation, Error: f.Err.Error(),
		})
	}
	return SyncReport{
		Status:    StatusSucceeded,
		Deleted:   r.Deleted,
		Inserted:  r.Inserted,
		Refreshed: r.Refreshed,
		Skipped:   r.Skipped,
		Warnings:  r.Warnings,
		Failures:  failures,
	}
}

type WorkloadList struct {
	Status string     `json:"status"`
	Items  []Workload `json:"items"`
	Error  *Failure   `json:"error,omitempty"`
}

// Predicted is the response of resource annotation.
//
// Items are annotated steps.
type Predicted struct {
	Status string          `json:"status"`
	Items  json.RawMessage `json:"items,omitempty"`
	Error  *Failure        `json:"error,omitempty"`
}

type Workflow struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
}

type WorkflowList struct {
	Status    string     `json:"status"`
	Namespace string     `json:"namespace"`
	Items     []Workflow `json:"items"`
	Error     *Failure   `json:"error,omitempty"`
}
