// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerTo(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("Expected info to be filtered at warn level, got: %s", output)
	}
	if !strings.Contains(output, `"msg":"shown"`) {
		t.Errorf("Expected JSON warn line, got: %s", output)
	}
}

func TestNewLoggerTo_DebugOverridesLevel(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "error")

	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, true)
	logger.Debug("debug line")

	AssertLogContains(t, &buf, "debug line")
	AssertLogContains(t, &buf, "source=")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRequestContext(t *testing.T) {
	logger, buf := TestLogger(t)

	ctx, requestLogger := WithRequestID(context.Background(), logger)
	requestID := GetRequestID(ctx)
	if len(requestID) != 16 {
		t.Fatalf("Expected 16 character request id, got %q", requestID)
	}

	requestLogger.Info("sign-in requested")
	WithOperation(WithComponent(FromContext(ctx, logger), "auth_service"), "sign_in").Info("token stored")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, requestID) {
			t.Errorf("Expected line to carry request id %s: %s", requestID, line)
		}
	}
	if !strings.Contains(lines[1], `"component":"auth_service"`) || !strings.Contains(lines[1], `"operation":"sign_in"`) {
		t.Errorf("Expected component and operation on second line: %s", lines[1])
	}
}

func TestFromContext_Fallback(t *testing.T) {
	logger, _ := TestLogger(t)
	if FromContext(context.Background(), logger) != logger {
		t.Error("Expected fallback logger for a bare context")
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("Expected empty request id for a bare context")
	}
}

func TestWithComponent_NilLogger(t *testing.T) {
	if WithComponent(nil, "container") == nil {
		t.Fatal("Expected default logger when nil is passed")
	}
}

func TestSafeTokenLog(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: "<empty>"},
		{name: "short", token: "dummy-jwt", want: "<too_short>"},
		{name: "long", token: "eyJhbGciOi.eyJzdWIiOiJF.c2lnbmF0dXJl", want: "eyJhbGci...bmF0dXJl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTokenLog(tt.token); got != tt.want {
				t.Errorf("SafeTokenLog(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestSafePrincipalLog(t *testing.T) {
	if got := SafePrincipalLog("ana@clinic.test"); got != "ana@***" {
		t.Errorf("Expected masked domain, got %q", got)
	}
	if got := SafePrincipalLog("E-0001"); got != "E-0001" {
		t.Errorf("Expected employee number unchanged, got %q", got)
	}
	if got := SafePrincipalLog(""); got != "<empty>" {
		t.Errorf("Expected <empty>, got %q", got)
	}
}
