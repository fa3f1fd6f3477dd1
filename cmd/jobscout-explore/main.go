// Command jobscout-explore is an interactive terminal client for a facet session.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/app"
	"github.com/kailas-cloud/jobscout/internal/config"
	"github.com/kailas-cloud/jobscout/internal/explore"
	logpkg "github.com/kailas-cloud/jobscout/internal/logger"
	"github.com/kailas-cloud/jobscout/internal/metrics"
	"github.com/kailas-cloud/jobscout/internal/usecase/session"
	"github.com/kailas-cloud/jobscout/internal/version"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("failed to load .env: " + err.Error())
	}

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Logs go to stderr so they do not interleave with rendered snapshots.
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterDiscoveryMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	sess := session.New(deps.Taxonomy, deps.Search, logger).
		WithLimits(deps.Limits).
		WithStaleCounter(metrics.StaleResponsesTotal)
	go sess.Run(ctx)

	debounce := session.NewDebouncer(time.Duration(cfg.Session.DebounceMS) * time.Millisecond)
	defer debounce.Stop()

	runner := explore.NewRunner(sess, deps.Resolver, debounce, os.Stdout)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-sess.Updates():
				runner.Render(snap)
			}
		}
	}()

	fmt.Printf("jobscout explorer %s, type \"help\" for commands\n", version.String())
	if err := readLoop(ctx, runner); err != nil {
		logger.Error("Input error", zap.Error(err))
	}
}

func readLoop(ctx context.Context, runner *explore.Runner) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		errc <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			err := runner.Handle(ctx, line)
			switch {
			case errors.Is(err, explore.ErrQuit):
				return nil
			case err != nil:
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	}
}
