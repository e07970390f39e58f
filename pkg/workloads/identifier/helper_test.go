package identifier_test

import "github.com/keti-strato/pms/pkg/domain"

func record(workloadId string) domain.WorkloadRecord {
	return domain.WorkloadRecord{WorkloadId: workloadId, Name: "name-of-" + workloadId}
}
