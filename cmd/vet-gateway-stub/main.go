// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main runs a local stand-in for the veterinary API gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vetclinic/vet-session/internal/gatewaystub"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/env"
	"github.com/vetclinic/vet-session/pkg/logging"
)

func main() {
	// ENV > Default precedence, flags override both
	debug := flag.Bool("d", env.GetBool("DEBUG", false), "enable debug logging")
	addr := flag.String("addr", env.GetString("STUB_ADDR", constants.DefaultStubAddr), "listen address")
	secret := flag.String("secret", env.GetString("STUB_SECRET", ""), "HMAC secret for issued tokens")
	ttl := flag.Duration("token-ttl", env.GetDuration("STUB_TOKEN_TTL", time.Hour), "lifetime of issued tokens")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vet-gateway-stub: local veterinary API gateway for development\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSeeded accounts: admin@clinic.test/admin, vet@clinic.test/vet\n")
	}
	flag.Parse()

	logger := logging.NewLogger(*debug)

	stub, err := gatewaystub.New(gatewaystub.Config{Secret: *secret, TokenTTL: *ttl}, logger)
	if err != nil {
		logger.Error("Failed to create gateway stub", "error", err.Error())
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           stub.Handler(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Warn("Gateway stub listening", "addr", server.Addr, "readyz", "http://"+server.Addr+"/readyz")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Gateway stub server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	received := <-sigChan
	logger.Info("Shutdown signal received", "signal", received)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Gateway stub shutdown error", "error", err.Error())
	}
}
