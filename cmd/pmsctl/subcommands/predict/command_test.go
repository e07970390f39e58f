package predict_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/rest/mock"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/internal/commandline"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/predict"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
)

func TestTask(t *testing.T) {
	steps := `[{"name": "train", "case": "train"}]`
	args := map[string][]string{predict.ARG_FILE: {"-"}}

	t.Run("it prints annotated steps", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.Predict = func(context.Context, []byte) (apiwl.Predicted, error) {
			return apiwl.Predicted{
				Status: "succeeded",
				Items:  json.RawMessage(`[{"name":"train","resources":{"cpu":"2"}}]`),
			}, nil
		}
		cl := commandline.New("pmsctl predict", steps, predict.Flags{}, args)

		if err := predict.Task(context.Background(), log.New(io.Discard, "", 0), client, cl, nil); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.Predict) != 1 || string(client.Calls.Predict[0]) != steps {
			t.Errorf("unexpected request: %q", client.Calls.Predict)
		}
		got := []map[string]any{}
		if err := json.Unmarshal(cl.Stdout_.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		want := []map[string]any{{"name": "train", "resources": map[string]any{"cpu": "2"}}}
		if !cmp.Equal(got, want) {
			t.Errorf("printed:\n===actual===\n%+v\n===expected===\n%+v", got, want)
		}
	})

	t.Run("it returns failure", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.Predict = func(context.Context, []byte) (apiwl.Predicted, error) {
			return apiwl.Predicted{
				Status: "failure",
				Error:  &apiwl.Failure{Kind: "PredictionServiceError", Message: "timeout"},
			}, rest.ErrFailure
		}
		cl := commandline.New("pmsctl predict", steps, predict.Flags{}, args)

		err := predict.Task(context.Background(), log.New(io.Discard, "", 0), client, cl, nil)
		if !errors.Is(err, rest.ErrFailure) {
			t.Errorf("unexpected error: %v", err)
		}
		if cl.Stdout_.Len() == 0 {
			t.Error("failure is not printed")
		}
	})

	t.Run("it rejects non-JSON input", func(t *testing.T) {
		client := mock.New(t)
		cl := commandline.New("pmsctl predict", "name: train", predict.Flags{}, args)

		if err := predict.Task(context.Background(), log.New(io.Discard, "", 0), client, cl, nil); err == nil {
			t.Error("expected error")
		}
		if len(client.Calls.Predict) != 0 {
			t.Errorf("requested: %q", client.Calls.Predict)
		}
	})
}
