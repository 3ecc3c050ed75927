package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/treex/lib/infra"
	"github.com/benz9527/treex/observability"
	"github.com/benz9527/treex/workload"
)

type dumpCommand struct {
	file    string
	removes []int
	keys    []int
}

func (cmd *dumpCommand) Name() string { return "dump" }

func (cmd *dumpCommand) Usage() string {
	return "insert the keys into a red-black tree, remove some and print the structure"
}

func (cmd *dumpCommand) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cmd.file, "file", "", "read whitespace separated keys from the file instead of the args")
	fs.IntSliceVar(&cmd.removes, "remove", nil, "keys deleted after all inserts, in order")
}

func (cmd *dumpCommand) Prepare(args []string) error {
	if cmd.file != "" && len(args) > 0 {
		return errors.New("dump takes either --file or keys")
	}
	keys, err := workload.ParseKeys(strings.NewReader(strings.Join(args, " ")))
	if err != nil {
		return err
	}
	cmd.keys = keys
	return nil
}

func (cmd *dumpCommand) Run(ctx context.Context, env *runEnv) error {
	if cmd.file != "" {
		keys, err := workload.LoadKeys(filepath.Dir(cmd.file), filepath.Base(cmd.file))
		if err != nil {
			return err
		}
		cmd.keys = keys
	}
	env.logger.Debug("dump", zap.Int("keys", len(cmd.keys)), zap.Ints("removes", cmd.removes))
	return workload.Dump(env.stdout, cmd.keys, cmd.removes)
}

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"

	checkStatsName = "check"
)

type checkCommand struct {
	cfg             workload.Config
	metrics         string
	metricsAddr     string
	metricsInterval time.Duration
}

func newCheckCommand() *checkCommand {
	return &checkCommand{
		cfg: workload.DefaultConfig(),
	}
}

func (cmd *checkCommand) Name() string { return "check" }

func (cmd *checkCommand) Usage() string {
	return "run randomized insert and remove trials validating the red-black tree"
}

func (cmd *checkCommand) BindFlags(fs *pflag.FlagSet) {
	cmd.cfg.BindFlags(fs)
	fs.StringVar(&cmd.metrics, "metrics", metricsNone, "none, console (stderr) or prometheus")
	fs.StringVar(&cmd.metricsAddr, "metrics-addr", "127.0.0.1:9464", "listen address of the prometheus handler")
	fs.DurationVar(&cmd.metricsInterval, "metrics-interval", 10*time.Second, "export interval of the console metrics")
}

func (cmd *checkCommand) Prepare(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("check takes no args, got %v", args)
	}
	switch cmd.metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		return fmt.Errorf("unknown metrics exporter %q", cmd.metrics)
	}
	if cmd.metrics != metricsNone {
		cmd.cfg.StatsName = checkStatsName
	}
	return cmd.cfg.Validate()
}

// startMetrics installs the meter provider. The returned func flushes
// and stops it.
func (cmd *checkCommand) startMetrics(env *runEnv) (observability.ShutdownFunc, error) {
	switch cmd.metrics {
	case metricsConsole:
		return observability.NewConsoleMetricsExporter(env.stderr, cmd.metricsInterval, cmd.metricsInterval)
	case metricsPrometheus:
		handler, shutdown, err := observability.NewPrometheusMetricsExporter()
		if err != nil {
			return nil, err
		}
		ln, err := net.Listen("tcp", cmd.metricsAddr)
		if err != nil {
			_ = shutdown(context.Background())
			return nil, infra.WrapErrorStackWithMessage(err, "listen metrics")
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.logger.Error(err, "metrics server stopped")
			}
		}()
		env.logger.Info("metrics served", zap.String("addr", ln.Addr().String()))
		return func(ctx context.Context) error {
			return multierr.Combine(srv.Shutdown(ctx), shutdown(ctx))
		}, nil
	default:
	}
	return func(context.Context) error { return nil }, nil
}

func (cmd *checkCommand) Run(ctx context.Context, env *runEnv) (err error) {
	shutdown, err := cmd.startMetrics(env)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, shutdown(stopCtx))
	}()
	if cmd.metrics != metricsNone {
		observability.InitAppStats(ctx, checkStatsName, nil)
	}

	report, err := workload.RunTrials(ctx, cmd.cfg, env.logger)
	_, _ = fmt.Fprintf(env.stdout,
		"trials=%d failed=%d inserted=%d removed=%d max_height=%d seed=%d elapsed=%s rss=%d\n",
		report.Trials, report.Failed, report.Inserted, report.Removed,
		report.MaxHeight, report.Seed, report.Elapsed, report.RSS,
	)
	return err
}
