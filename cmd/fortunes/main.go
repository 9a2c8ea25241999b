// Command fortunes is the terminal client for the fortunes service. One
// process behaves like one browser tab: it keeps its own cookies and session
// and walks the same pages through the route guard.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortunes/fortunes-web/internal/bootstrap"
	"github.com/fortunes/fortunes-web/internal/core"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fortunes:", err)
		os.Exit(1) //nolint:forbidigo // CLI must exit with failure status on fatal errors
	}
}

func run(ctx context.Context, stdin *os.File, stdout io.Writer) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{Level: cfg.LogLevel, Text: true, Output: os.Stderr})

	metrics := bootstrap.BuildMetrics(logger, cfg.Observability.Metrics, "client")
	defer func() { _ = metrics.Close() }()

	tab, err := bootstrap.BuildTab(bootstrap.TabDeps{
		Config: &cfg,
		Notifier: core.NotifierFunc(func(_ context.Context, msg string) {
			fmt.Fprintln(stdout, "!", msg)
		}),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	sh := newShell(tab, bufio.NewReader(stdin), stdout)
	if fd := int(stdin.Fd()); term.IsTerminal(fd) {
		sh.secret = func(prompt string) (string, error) {
			fmt.Fprint(stdout, prompt)
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(stdout)
			return string(b), err
		}
	}
	return sh.run(ctx)
}
