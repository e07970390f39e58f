package domain

// domain package contains the Domain Models of pms.
//
// `domain/ENTITY.go` has entities and small helpers on them.
// For example, `domain/workload.go` contains `WorkloadRecord`.
//
// `domain/ENTITY` directory contains the "phisical" representations of the entity:
// the mirror store (`domain/workload/db`), the remote platform (`domain/workload/platform`)
// or Kubernetes (`domain/workflow/k8s`).
//
// # Entities
//
// - `workload`: a ML workload submitted to the remote platform.
// The platform owns workloads. pms keeps a local mirror of them,
// reconciled against the platform's listing before each submission.
//
// - `workflow`: an Argo Workflow running a submitted workload in the cluster.
// pms only reads them to report their progress.
