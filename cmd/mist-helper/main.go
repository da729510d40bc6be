package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/infrastructure/config"
	"github.com/GriffinCanCode/mist/internal/platform/sim"
	"github.com/GriffinCanCode/mist/internal/shared/id"
	"github.com/GriffinCanCode/mist/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mist <token>")
		return 2
	}
	token := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger := cfg.Logger().Named("helper").With(zap.String("session", os.Getenv(id.EnvSession)))
	defer logger.Sync()

	fx := sim.DefaultFixture()
	if path := os.Getenv("MIST_FIXTURE"); path != "" {
		fx, err = sim.Load(path)
		if err != nil {
			logger.Error("Failed to load fixture", zap.String("path", path), zap.Error(err))
			return 1
		}
		logger.Info("Loaded fixture", zap.String("path", path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := transport.NewConn(os.Stdin, os.Stdout,
		transport.WithMaxFrameSize(cfg.Calls.MaxFrameSize),
		transport.WithClosers(os.Stdin),
	)
	srv := helper.NewServer(conn, token, sim.New(fx), helper.WithLogger(logger))

	// Unblock the pending read on shutdown signals
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Helper stopped", zap.Error(err))
		return 1
	}
	logger.Info("Helper exited")
	return 0
}
