package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/treex/xlog"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2

	startStopTimeout = 15 * time.Second
)

type runEnv struct {
	stdout io.Writer
	stderr io.Writer
	logger xlog.XLogger
}

type command interface {
	Name() string
	Usage() string
	BindFlags(fs *pflag.FlagSet)
	// Prepare receives the positional arguments after the flags.
	Prepare(args []string) error
	Run(ctx context.Context, env *runEnv) error
}

func commands() []command {
	return []command{
		&dumpCommand{},
		newCheckCommand(),
	}
}

type globalOptions struct {
	logLevel   string
	logEncoder string
	logFile    string
}

func (opts *globalOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logEncoder, "log-encoder", "text", "json or text")
	fs.StringVar(&opts.logFile, "log-file", "", "also append the logs into the file")
}

// newLogger builds the logger into w. The returned func closes the log
// file, if any.
func (opts *globalOptions) newLogger(w io.Writer) (xlog.XLogger, func() error, error) {
	lvl, err := xlog.ParseLogLevel(opts.logLevel)
	if err != nil {
		return nil, nil, err
	}
	enc, err := xlog.ParseLogEncoder(opts.logEncoder)
	if err != nil {
		return nil, nil, err
	}
	xopts := []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerWriter(zapcore.Lock(zapcore.AddSync(w))),
	}
	closeFn := func() error { return nil }
	if opts.logFile != "" {
		file, err := xlog.NewFileLog(filepath.Dir(opts.logFile), filepath.Base(opts.logFile))
		if err != nil {
			return nil, nil, err
		}
		xopts = append(xopts, xlog.WithXLoggerWriter(file))
		closeFn = file.Close
	}
	return xlog.NewXLogger(xopts...), closeFn, nil
}

func usage(w io.Writer, global *pflag.FlagSet) {
	builder := &strings.Builder{}
	builder.WriteString("usage: treex [global flags] <command> [flags] [args]\n\ncommands:\n")
	for _, cmd := range commands() {
		builder.WriteString(fmt.Sprintf("  %-8s %s\n", cmd.Name(), cmd.Usage()))
	}
	builder.WriteString("\nglobal flags:\n")
	builder.WriteString(global.FlagUsages())
	_, _ = io.WriteString(w, builder.String())
}

// parse resolves the command and its flags. A nil command with a nil
// error means the help is asked.
func parse(args []string, opts *globalOptions, stderr io.Writer) (command, error) {
	global := pflag.NewFlagSet("treex", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	opts.bindFlags(global)
	global.Usage = func() { usage(stderr, global) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return nil, errors.New("missing command")
	}
	for _, cmd := range commands() {
		if cmd.Name() != rest[0] {
			continue
		}
		fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
		fs.SetOutput(stderr)
		cmd.BindFlags(fs)
		if err := fs.Parse(rest[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return nil, nil
			}
			return nil, err
		}
		if err := cmd.Prepare(fs.Args()); err != nil {
			return nil, err
		}
		return cmd, nil
	}
	usage(stderr, global)
	return nil, fmt.Errorf("unknown command %q", rest[0])
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

// registerCommand runs the command in the background after the app
// started, then asks the app to shut down with the exit code.
func registerCommand(lc fx.Lifecycle, shutdowner fx.Shutdowner, env *runEnv, logger xlog.XLogger, cmd command) {
	env.logger = logger
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := exitOK
				if err := cmd.Run(ctx, env); err != nil {
					logger.ErrorStack(err, "command failed", zap.String("command", cmd.Name()))
					code = exitFailure
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func newApp(env *runEnv, logger xlog.XLogger, cmd command) *fx.App {
	return fx.New(
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(env),
		fx.Provide(func() xlog.XLogger {
			return logger
		}),
		fx.Invoke(setMaxProcs),
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, env *runEnv, logger xlog.XLogger) {
			registerCommand(lc, shutdowner, env, logger, cmd)
		}),
		fx.StartTimeout(startStopTimeout),
		fx.StopTimeout(startStopTimeout),
	)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &globalOptions{}
	cmd, err := parse(args, opts, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "treex: %v\n", err)
		return exitUsage
	}
	if cmd == nil {
		return exitOK
	}
	logger, closeLog, err := opts.newLogger(stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "treex: %v\n", err)
		return exitUsage
	}
	defer func() {
		_ = logger.Sync()
		_ = closeLog()
	}()

	app := newApp(&runEnv{stdout: stdout, stderr: stderr}, logger, cmd)
	if err = app.Err(); err != nil {
		logger.ErrorStack(err, "app init failed")
		return exitFailure
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startStopTimeout)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		logger.ErrorStack(err, "app start failed")
		return exitFailure
	}
	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), startStopTimeout)
	defer cancel()
	if err = app.Stop(stopCtx); err != nil {
		logger.ErrorStack(err, "app stop failed")
		return exitFailure
	}
	return sig.ExitCode
}
