package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-formstep/internal/config"
	"github.com/goliatone/go-formstep/internal/logging"
	"github.com/goliatone/go-formstep/pkg/renderers/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		logging.Logger().Error("command failed", "error", err)
		os.Exit(1)
	}
}
