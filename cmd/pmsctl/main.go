package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/keti-strato/pms/cmd/pmsctl/subcommands/common"
	subinfo "github.com/keti-strato/pms/cmd/pmsctl/subcommands/info"
	subpredict "github.com/keti-strato/pms/cmd/pmsctl/subcommands/predict"
	subsubmit "github.com/keti-strato/pms/cmd/pmsctl/subcommands/submit"
	subsync "github.com/keti-strato/pms/cmd/pmsctl/subcommands/sync"
	subwl "github.com/keti-strato/pms/cmd/pmsctl/subcommands/workloads"
	"github.com/youta-t/flarc"
)

func must(cmd flarc.Command, err error) flarc.Command {
	if err != nil {
		log.Fatal(err)
	}
	return cmd
}

func main() {
	log.SetPrefix("[" + path.Base(os.Args[0]) + "] ")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pmsctl := must(flarc.NewCommandGroup(
		"pms commandline interface",
		common.DefaultCommonFlags(),
		flarc.WithSubcommand("submit", must(subsubmit.New())),
		flarc.WithSubcommand("sync", must(subsync.New())),
		flarc.WithSubcommand("predict", must(subpredict.New())),
		flarc.WithSubcommand("workloads", must(subwl.New())),
		flarc.WithSubcommand("info", must(subinfo.New())),
	))

	os.Exit(flarc.Run(ctx, pmsctl, flarc.WithHelp(true)))
}
