package sync_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/rest/mock"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/internal/commandline"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/sync"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

func TestTask(t *testing.T) {
	t.Run("it prints the report and logs item failures", func(t *testing.T) {
		report := apiwl.SyncReport{
			Status: "succeeded", Deleted: 1, Inserted: 2,
			Failures: []apiwl.ItemFailure{{MlIds: []string{"keti003"}, Operation: "insert", Error: "conflict"}},
		}
		client := mock.New(t)
		client.Impl.Sync = func(context.Context) (apiwl.SyncReport, error) { return report, nil }
		cl := commandline.New("pmsctl sync", "", sync.Flags{}, map[string][]string{})
		logs := new(bytes.Buffer)

		if err := sync.Task(context.Background(), log.New(logs, "", 0), client, cl, nil); err != nil {
			t.Fatal(err)
		}
		got := apiwl.SyncReport{}
		if err := json.Unmarshal(cl.Stdout_.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(got, report) {
			t.Errorf("printed:\n===actual===\n%+v\n===expected===\n%+v", got, report)
		}
		if !strings.Contains(logs.String(), "keti003") {
			t.Errorf("failure is not logged: %s", logs.String())
		}
	})

	t.Run("it prints failure report and returns error", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.Sync = func(context.Context) (apiwl.SyncReport, error) {
			return apiwl.SyncReport{
				Status: "failure", Error: &apiwl.Failure{Kind: "RemoteApiError", Message: "unreachable"},
			}, rest.ErrFailure
		}
		cl := commandline.New("pmsctl sync", "", sync.Flags{}, map[string][]string{})

		err := sync.Task(context.Background(), log.New(new(bytes.Buffer), "", 0), client, cl, nil)
		if !errors.Is(err, rest.ErrFailure) {
			t.Errorf("unexpected error: %v", err)
		}
		if !strings.Contains(cl.Stdout_.String(), "unreachable") {
			t.Errorf("failure is not printed: %s", cl.Stdout_.String())
		}
	})
}
