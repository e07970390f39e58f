package submit

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	apiwl "github.com/keti-strato/pms/pkg/api/types/workloads"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Retry   bool   `flag:"retry" help:"replace the workload which the document is a retry of"`
	Predict bool   `flag:"predict" help:"annotate steps with predicted resources"`
	Cluster string `flag:"cluster" alias:"c" metavar:"number" help:"index of the target cluster"`
	User    string `flag:"user" alias:"u" help:"user id recorded as the owner of the workload"`
}

const ARG_FILE = "FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Submit an Argo Workflow document.",
		Flags{Cluster: strconv.Itoa(apiwl.DefaultCluster)},
		flarc.Args{
			{
				Name: ARG_FILE, Required: true,
				Help: `path to YAML of the workflow. "-" reads stdin`,
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Submit an Argo Workflow document to pmsd.

The document is given a workload id and labeled, then applied to the platform.
With --retry, the workload which the document is a retry of is replaced.

The outcome is printed as JSON, also when the submission has failed.
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
	flags := cl.Flags()
	cluster, err := strconv.Atoi(flags.Cluster)
	if err != nil || cluster < 0 {
		return fmt.Errorf("%w: --cluster should be a non-negative number: %q", flarc.ErrUsage, flags.Cluster)
	}

	file := cl.Args()[ARG_FILE][0]
	doc, err := common.ReadSource(cl.Stdin(), file)
	if err != nil {
		return fmt.Errorf("%w: can not read %s", err, file)
	}

	outcome, err := client.Submit(ctx, apiwl.SubmitRequest{
		Yaml:    base64.StdEncoding.EncodeToString(doc),
		Cluster: &cluster,
		Retry:   flags.Retry,
		Predict: flags.Predict,
		UserId:  flags.User,
	})
	if err != nil && !errors.Is(err, rest.ErrFailure) {
		return err
	}

	for _, w := range outcome.Warnings {
		logger.Printf("warning: %s", w)
	}
	if derr := common.Dump(cl.Stdout(), outcome); derr != nil {
		return derr
	}
	if err != nil {
		return fmt.Errorf("%w (at %s)", err, outcome.Stage)
	}
	logger.Printf("submitted as %s", outcome.MlId)
	return nil
}
