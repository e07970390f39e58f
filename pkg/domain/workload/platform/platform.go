// Package platform is the interface to the remote workload platform, which owns workloads.
package platform

import (
	"context"

	"github.com/keti-strato/pms/pkg/domain"
)

// Submission is a workload to be applied to the platform.
type Submission struct {
	ClusterIdx  int
	Description string
	WorkloadId  string
	StepCodes   []string
	Name        string
	Namespace   string
	UserId      string

	// base64 encoded configuration document.
	Document string

	// 1 to replace the workload having the same name, 0 to create.
	Overwrite int
}

type Interface interface {
	// List returns workloads which the platform knows.
	//
	// Items lacking required fields are returned with their Missing field.
	List(context.Context) ([]domain.ObservedWorkload, error)

	// Apply submits a workload, and returns the workload accepted by the platform.
	//
	// Rejections are returned as *errors.RemoteError,
	// and failures to communicate as *errors.TransportError.
	Apply(context.Context, Submission) (domain.WorkloadRecord, error)

	// Delete removes the workload from the platform.
	//
	// Rejections are returned as *errors.RemoteError,
	// and failures to communicate as *errors.TransportError.
	Delete(ctx context.Context, workloadId string) error
}
