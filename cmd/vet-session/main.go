// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main provides the vet-session command line client.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vetclinic/vet-session/internal/container"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/config"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// Build-time variables set via ldflags
var (
	Version   = constants.ServiceVersion
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.Help {
		usage(stderr)
		return exitOK
	}
	if flags.Version {
		fmt.Fprintf(stdout, "%s %s (commit %s, built %s)\n", constants.ServiceName, Version, GitCommit, BuildTime)
		return exitOK
	}

	logger := logging.NewLoggerTo(stderr, flags.Debug)

	if flags.ConfigCheck {
		return checkConfig(flags, stdout, logger)
	}

	c, err := container.NewContainer(logger, flags)
	if err != nil {
		logger.Error("Failed to initialize container", "error", err.Error())
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("shutdown incomplete", "error", err.Error())
		}
	}()

	ctx, _ = logging.WithRequestID(ctx, logger)

	a := &app{c: c, out: stdout, err: stderr}
	if err := a.run(ctx, flags.Command, flags.Args); err != nil {
		return reportError(stderr, err)
	}
	return exitOK
}

// checkConfig validates the merged configuration and prints it
func checkConfig(flags *config.CLIConfig, stdout io.Writer, logger *slog.Logger) int {
	logger.Info("Configuration check requested")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stdout, "configuration invalid: %v\n", err)
		return exitFailure
	}
	flags.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "configuration invalid: %v\n", err)
		return exitFailure
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return exitFailure
	}
	logger.Info("Configuration validation completed", "status", "valid")
	return exitOK
}

func reportError(stderr io.Writer, err error) int {
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		usage(stderr)
		return exitUsage
	case errors.Is(err, entities.ErrNoSession):
		fmt.Fprintln(stderr, "error: not signed in")
		return exitFailure
	}

	if failure, ok := entities.IsAuthFailure(err); ok {
		fmt.Fprintf(stderr, "error: %s rejected with status %d", failure.Operation, failure.StatusCode)
		if failure.Message != "" {
			fmt.Fprintf(stderr, ": %s", failure.Message)
		}
		fmt.Fprintln(stderr)
		return exitFailure
	}

	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFailure
}
