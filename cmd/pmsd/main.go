package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kconf "github.com/keti-strato/pms/pkg/configs/pmsd"
	kpool "github.com/keti-strato/pms/pkg/conn/db/postgres/pool"
	"github.com/keti-strato/pms/pkg/domain/workflow"
	"github.com/keti-strato/pms/pkg/domain/workflow/k8s"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	"github.com/keti-strato/pms/pkg/domain/workload/db/memory"
	kpg "github.com/keti-strato/pms/pkg/domain/workload/db/postgres"
	"github.com/keti-strato/pms/pkg/domain/workload/platform/remote"
	"github.com/keti-strato/pms/pkg/logger"
	"github.com/keti-strato/pms/pkg/utils/echoutil"
	"github.com/keti-strato/pms/pkg/utils/filewatch"
	"github.com/keti-strato/pms/pkg/utils/kubeutil"
	"github.com/keti-strato/pms/pkg/workloads/identifier"
	"github.com/keti-strato/pms/pkg/workloads/mirror"
	"github.com/keti-strato/pms/pkg/workloads/prediction"
	"github.com/keti-strato/pms/pkg/workloads/resources"
	"github.com/keti-strato/pms/pkg/workloads/submission"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

func main() {
	pconfig := flag.String(
		"config", os.Getenv("PMS_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := kconf.LoadConfig(*pconfig)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	lvl, _ := echoutil.ParseLevel(*loglevel)
	services, closer, err := wire(ctx, conf, lvl)
	if err != nil {
		log.Fatalf("can not start: %s", err)
	}
	defer closer()

	server := BuildServer(services, *loglevel)
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	{
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer wcancel()
		ctx = wctx
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done():
		var modified *filewatch.Modified
		if errors.As(context.Cause(ctx), &modified) {
			// exit to be restarted with the new configuration.
			server.Logger.Infof("config file is updated (%s). quit to restart server.", modified)
			exit = 1
		} else {
			server.Logger.Infof("context has been done: %s, cause: %s", ctx.Err(), context.Cause(ctx))
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	server.Logger.Info("shutting down...")
	qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer qcancel()
	if err := server.Shutdown(qctx); err != nil {
		server.Logger.Errorf("Shutdown with error. %+v", err)
		exit = 1
	}
	closer()
	os.Exit(exit)
}

// wire builds services from configuration.
//
// closer releases connections. It can be called more than once.
func wire(ctx context.Context, conf *kconf.Config, lvl glog.Lvl) (Services, func(), error) {
	closers := []func(){}
	closed := false
	closer := func() {
		if closed {
			return
		}
		closed = true
		for i := len(closers) - 1; 0 <= i; i-- {
			closers[i]()
		}
	}

	store, err := connectStore(ctx, conf.Database(), func(f func()) { closers = append(closers, f) })
	if err != nil {
		closer()
		return Services{}, nil, err
	}

	platform := remote.New(conf.Platform().URL(), conf.Platform().Token())

	pc := conf.Prediction()
	var predictor prediction.Predictor
	if pc.URL() != "" {
		predictor = prediction.NewClient(pc.URL(), pc.Timeout())
	} else {
		predictor = prediction.NewStatic(pc.Cases(), pc.Default())
	}
	if cc := pc.Cache(); cc != nil {
		rc := redis.NewClient(&redis.Options{Addr: cc.Redis()})
		closers = append(closers, func() { rc.Close() })
		predictor = prediction.WithCache(
			predictor, prediction.NewRedisCache(rc, cc.Prefix()), cc.TTL(),
			logger.New("prediction", lvl),
		)
	}

	wc := conf.Workloads()
	annotator := resources.New(
		predictor,
		resources.WithCaseLabel(wc.CaseLabel()),
		resources.WithGPUFreeCases(wc.GPUFreeCases()...),
		resources.WithDefaultGPULimit(wc.DefaultGPULimit()),
		resources.WithLogger(logger.New("resources", lvl)),
	)

	syncer := mirror.New(
		store, platform,
		mirror.WithExemptPrefix(wc.ExemptPrefix()),
		mirror.WithRefreshKnown(conf.Mirror().RefreshKnown()),
		mirror.WithLogger(logger.New("mirror", lvl)),
	)

	allocator := identifier.New(
		store,
		identifier.WithPrefix(wc.Prefix()),
		identifier.WithReservationTTL(wc.ReservationTTL()),
	)

	orchestrator := submission.New(
		submission.Config{
			Namespace:         wc.Namespace(),
			StepCodes:         wc.StepCodes(),
			Principal:         wc.Principal(),
			RetryEnabled:      conf.Submission().RetryEnabled(),
			AnnotateResources: conf.Submission().AnnotateResources(),
			SyncTimeout:       conf.Timeouts().Sync(),
			DeleteTimeout:     conf.Timeouts().Delete(),
			SubmitTimeout:     conf.Timeouts().Submit(),
		},
		syncer, store, allocator, platform,
		submission.WithAnnotator(annotator),
		submission.WithLogger(logger.New("submission", lvl)),
	)

	var workflows workflow.Interface
	if kc := conf.Kubernetes(); kc.Enabled() {
		client, err := kubeutil.ConnectDynamic(kc.Kubeconfig())
		if err != nil {
			closer()
			return Services{}, nil, err
		}
		workflows = k8s.New(client, k8s.WithLogger(logger.New("workflow", lvl)))
	}

	return Services{
		Submitter: orchestrator,
		Annotator: annotator,
		Syncer:    syncer,
		Workloads: store,
		Workflows: workflows,
	}, closer, nil
}

func connectStore(ctx context.Context, dc *kconf.DatabaseConfig, onClose func(func())) (kdb.WorkloadInterface, error) {
	if dc.URL() == "" {
		log.Println("database is not configured. mirror is held in memory.")
		return memory.New(), nil
	}

	pool, err := kpool.Connect(ctx, dc.URL(), dc.MaxConns())
	if err != nil {
		return nil, err
	}
	onClose(pool.Close)

	if err := kpg.EnsureSchema(ctx, pool); err != nil {
		return nil, err
	}
	return kpg.New(pool), nil
}
