package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/keti-strato/pms/cmd/pmsctl/rest"
	"github.com/youta-t/flarc"
)

// EnvServer names the environment variable for the default of --server.
const EnvServer = "PMS_SERVER"

const defaultServer = "http://localhost:8080"

type CommonFlags struct {
	Server string `flag:"server" help:"URL of pmsd. Defaults to $PMS_SERVER or http://localhost:8080"`
}

// DefaultCommonFlags returns CommonFlags with defaults taken from environment.
func DefaultCommonFlags() CommonFlags {
	server := os.Getenv(EnvServer)
	if server == "" {
		server = defaultServer
	}
	return CommonFlags{Server: server}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	client rest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask adapts Task into flarc.Task.
//
// CommonFlags should be passed from the command group.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		params := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				params = append(params, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		client, err := rest.NewClient(commonFlag.Server)
		if err != nil {
			return err
		}
		return task(ctx, logger, client, cl, params)
	}
}
