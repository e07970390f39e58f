package info

import (
	"context"
	"errors"
	"log"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Namespace string `flag:"namespace" alias:"n" help:"namespace of workflows. Defaults to the server default"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show status of workflows.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
Show phase and duration of workflows in a namespace.
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
	list, err := client.Info(ctx, cl.Flags().Namespace)
	if err != nil && !errors.Is(err, rest.ErrFailure) {
		return err
	}
	if derr := common.Dump(cl.Stdout(), list); derr != nil {
		return derr
	}
	return err
}
