// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package config

import "time"

// CLIConfig holds parsed command line flags. Set fields override the environment.
type CLIConfig struct {
	Debug       bool
	GatewayHost string
	Store       string
	SessionFile string
	SessionID   string
	Timeout     time.Duration
	Broadcast   bool
	Audit       bool
	ConfigCheck bool
	Version     bool
	Help        bool

	Command string
	Args    []string
}

// Apply overlays the flags that were set onto cfg
func (f *CLIConfig) Apply(cfg *AppConfig) {
	if f == nil {
		return
	}
	if f.GatewayHost != "" {
		cfg.Gateway.Host = f.GatewayHost
	}
	if f.Store != "" {
		cfg.Store.Backend = f.Store
	}
	if f.SessionFile != "" {
		cfg.Store.SessionFile = f.SessionFile
	}
	if f.SessionID != "" {
		cfg.Store.SessionID = f.SessionID
	}
	if f.Timeout > 0 {
		cfg.Gateway.Timeout = f.Timeout
	}
	if f.Broadcast {
		cfg.NATS.BroadcastEnabled = true
	}
	if f.Audit {
		cfg.OpenSearch.AuditEnabled = true
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
}
