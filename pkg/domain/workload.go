package domain

import (
	"slices"
	"strings"
)

const (
	// Workload ids with this prefix are managed outside of the mirror and
	// are never removed by reconciliation.
	ExemptPrefix = "workload-"

	// Prefix of workload ids allocated by this system.
	SequentialPrefix = "keti"

	// Digits of the numeric part of a sequential id, at least.
	SequentialDigits = 3

	// Workload id reported when no predecessor of a retry could be resolved.
	UnresolvedWorkloadId = "null_mlid"
)

// WorkloadRecord is a workload known to the remote platform, as mirrored locally.
type WorkloadRecord struct {
	// id assigned by the platform. It can be empty.
	Id string

	// Identity of the workload. Unique in the mirror.
	WorkloadId string

	Name        string
	Namespace   string
	Description string

	// Ordered pipeline stage tags.
	StepCodes []string

	Status     string
	UserId     string
	ClusterIdx string
}

func (r WorkloadRecord) Equal(o WorkloadRecord) bool {
	return r.Id == o.Id &&
		r.WorkloadId == o.WorkloadId &&
		r.Name == o.Name &&
		r.Namespace == o.Namespace &&
		r.Description == o.Description &&
		slices.Equal(r.StepCodes, o.StepCodes) &&
		r.Status == o.Status &&
		r.UserId == o.UserId &&
		r.ClusterIdx == o.ClusterIdx
}

// IsExempt tells whether reconciliation must keep this workload id.
func IsExempt(workloadId string, exemptPrefix string) bool {
	return exemptPrefix != "" && strings.HasPrefix(workloadId, exemptPrefix)
}

// ObservedWorkload is an item of a workload list reported by the platform.
type ObservedWorkload struct {
	Record WorkloadRecord

	// Required fields which the platform did not report.
	Missing []string
}

// Complete tells whether all required fields are reported.
func (o ObservedWorkload) Complete() bool {
	return len(o.Missing) == 0
}
