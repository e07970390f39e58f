package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/pkg/conn/db/postgres/pool/testenv"
	"github.com/keti-strato/pms/pkg/domain"
	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	kpgwl "github.com/keti-strato/pms/pkg/domain/workload/db/postgres"
)

func record(workloadId string, name string) domain.WorkloadRecord {
	return domain.WorkloadRecord{
		Id:          "12",
		WorkloadId:  workloadId,
		Name:        name,
		Namespace:   "keti-crd",
		Description: "desc of " + name,
		StepCodes:   []string{"ml-step-100", "ml-step-200", "ml-step-400"},
		Status:      "Waiting",
		UserId:      "jhpark",
		ClusterIdx:  "1",
	}
}

func TestWorkload(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(
		ctx, t, kpgwl.EnsureSchema, "workload", "workload_reservation",
	)

	t.Run("it reads what is written", func(t *testing.T) {
		testee := kpgwl.New(poolBroaker.GetPool(ctx, t))

		for _, r := range []domain.WorkloadRecord{
			record("keti002", "pipe-b"), record("keti001", "pipe-a"), record("workload-9", "pipe-a"),
		} {
			if err := testee.Upsert(ctx, r); err != nil {
				t.Fatal(err)
			}
		}

		updated := record("keti002", "pipe-b")
		updated.Status = "Succeeded"
		if err := testee.Upsert(ctx, updated); err != nil {
			t.Fatal(err)
		}

		ids, err := testee.Ids(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"keti001", "keti002", "workload-9"}, ids); diff != "" {
			t.Errorf("ids (-want +got):\n%s", diff)
		}

		got, err := testee.Get(ctx, "keti002")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(updated) {
			t.Errorf("unexpected record: %+v", got)
		}

		if _, err := testee.Get(ctx, "keti404"); !errors.Is(err, kerr.ErrMissing) {
			t.Errorf("expected missing: %v", err)
		}

		deleted, err := testee.DeleteByName(ctx, "pipe-a")
		if err != nil {
			t.Fatal(err)
		}
		if len(deleted) != 2 {
			t.Errorf("unexpected deleted: %v", deleted)
		}

		list, err := testee.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || !list[0].Equal(updated) {
			t.Errorf("unexpected list: %+v", list)
		}
	})

	t.Run("failing item in Sync is rolled back alone", func(t *testing.T) {
		testee := kpgwl.New(poolBroaker.GetPool(ctx, t))
		if err := testee.Upsert(ctx, record("keti001", "pipe-a")); err != nil {
			t.Fatal(err)
		}

		err := testee.Sync(ctx, func(b kdb.Batch) error {
			if n, err := b.Delete(ctx, "keti001"); err != nil || n != 1 {
				t.Errorf("delete: n = %d, err = %v", n, err)
			}
			b.Try(ctx, func(b kdb.Batch) error {
				if err := b.Upsert(ctx, record("keti003", "pipe-c")); err != nil {
					return err
				}
				return errors.New("fake")
			})
			return b.Try(ctx, func(b kdb.Batch) error {
				return b.Upsert(ctx, record("keti002", "pipe-b"))
			})
		})
		if err != nil {
			t.Fatal(err)
		}

		ids, err := testee.Ids(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"keti002"}, ids); diff != "" {
			t.Errorf("ids (-want +got):\n%s", diff)
		}
	})

	t.Run("reservations are taken until released", func(t *testing.T) {
		testee := kpgwl.New(poolBroaker.GetPool(ctx, t))
		if err := testee.Upsert(ctx, record("keti001", "pipe-a")); err != nil {
			t.Fatal(err)
		}

		var seen []string
		pick := func(id string) func([]string) (string, error) {
			return func(taken []string) (string, error) {
				seen = taken
				return id, nil
			}
		}

		if _, err := testee.Reserve(ctx, "keti", time.Minute, pick("keti002")); err != nil {
			t.Fatal(err)
		}
		if _, err := testee.Reserve(ctx, "keti", time.Minute, pick("keti003")); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"keti001", "keti002"}, seen); diff != "" {
			t.Errorf("taken (-want +got):\n%s", diff)
		}

		if err := testee.Release(ctx, "keti002"); err != nil {
			t.Fatal(err)
		}
		if _, err := testee.Reserve(ctx, "keti", time.Minute, pick("keti002")); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"keti001", "keti003"}, seen); diff != "" {
			t.Errorf("taken (-want +got):\n%s", diff)
		}
	})
}
