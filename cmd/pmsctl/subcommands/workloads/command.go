package workloads

import (
	"context"
	"errors"
	"log"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	"github.com/youta-t/flarc"
)

type Flags struct {
	User string `flag:"user" alias:"u" help:"show workloads of the user only"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List mirrored workloads.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
List workloads in the mirror of pmsd.
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
	list, err := client.Workloads(ctx)
	if err != nil && !errors.Is(err, rest.ErrFailure) {
		return err
	}

	if user := cl.Flags().User; user != "" && err == nil {
		items := []apiwl.Workload{}
		for _, w := range list.Items {
			if w.UserId == user {
				items = append(items, w)
			}
		}
		list.Items = items
	}

	if derr := common.Dump(cl.Stdout(), list); derr != nil {
		return derr
	}
	return err
}
