package sync

import (
	"context"
	"errors"
	"log"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flags struct{}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Synchronize the workload mirror with the platform.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
Make pmsd reconcile its workload mirror with the platform, and print the report.
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
	report, err := client.Sync(ctx)
	if err != nil && !errors.Is(err, rest.ErrFailure) {
		return err
	}
	for _, f := range report.Failures {
		logger.Printf("%s failed for %v: %s", f.Operation, f.MlIds, f.Error)
	}
	if derr := common.Dump(cl.Stdout(), report); derr != nil {
		return derr
	}
	return err
}
