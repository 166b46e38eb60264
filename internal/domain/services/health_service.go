// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"sort"
	"time"

	"github.com/vetclinic/vet-session/pkg/constants"
)

// HealthChecker is anything that can check its backing dependency
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthService runs the health checks of the configured session dependencies
type HealthService struct {
	checkers map[string]HealthChecker
	timeout  time.Duration
}

// HealthStatus is the aggregated result of one CheckHealth run. Status is
// healthy when every check passed, unhealthy when all failed, degraded otherwise.
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Duration   time.Duration    `json:"duration"`
	Checks     map[string]Check `json:"checks"`
	ErrorCount int              `json:"error_count,omitempty"`
}

// Check is the outcome of a single component check.
type Check struct {
	Status    string        `json:"status"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewHealthService creates a health service. Nil checkers are skipped.
func NewHealthService(checkers map[string]HealthChecker, timeout time.Duration) *HealthService {
	active := make(map[string]HealthChecker, len(checkers))
	for name, c := range checkers {
		if c != nil {
			active[name] = c
		}
	}
	if timeout <= 0 {
		timeout = constants.HealthCheckTimeout
	}
	return &HealthService{checkers: active, timeout: timeout}
}

// Components returns the checked component names in sorted order
func (s *HealthService) Components() []string {
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth checks every dependency in parallel under one shared timeout.
func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		name  string
		check Check
	}

	started := time.Now()
	results := make(chan result, len(s.checkers))
	for name, checker := range s.checkers {
		go func() {
			begin := time.Now()
			check := Check{Status: constants.StatusHealthy, Timestamp: begin}
			if err := checker.HealthCheck(ctx); err != nil {
				check.Status, check.Error = constants.StatusUnhealthy, err.Error()
			}
			check.Duration = time.Since(begin)
			results <- result{name: name, check: check}
		}()
	}

	out := &HealthStatus{Timestamp: started, Checks: make(map[string]Check, len(s.checkers))}
	for range s.checkers {
		r := <-results
		out.Checks[r.name] = r.check
		if r.check.Status != constants.StatusHealthy {
			out.ErrorCount++
		}
	}
	out.Duration = time.Since(started)

	switch out.ErrorCount {
	case 0:
		out.Status = constants.StatusHealthy
	case len(s.checkers):
		out.Status = constants.StatusUnhealthy
	default:
		out.Status = constants.StatusDegraded
	}
	return out
}
