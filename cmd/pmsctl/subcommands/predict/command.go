package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flags struct{}

const ARG_FILE = "FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Annotate steps with predicted resources.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_FILE, Required: true,
				Help: `path to JSON array of steps. "-" reads stdin`,
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Ask pmsd to predict resources of steps, and print the annotated steps.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	client rest.Client,
	cl flarc.Commandline[Flags],
	params []any,
) error {
	file := cl.Args()[ARG_FILE][0]
	steps, err := common.ReadSource(cl.Stdin(), file)
	if err != nil {
		return fmt.Errorf("%w: can not read %s", err, file)
	}
	if !json.Valid(steps) {
		return fmt.Errorf("%s is not JSON", file)
	}

	predicted, err := client.Predict(ctx, steps)
	if err != nil {
		if errors.Is(err, rest.ErrFailure) {
			if derr := common.Dump(cl.Stdout(), predicted); derr != nil {
				return derr
			}
		}
		return err
	}
	return common.Dump(cl.Stdout(), predicted.Items)
}
