// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestLogger returns a debug-level JSON logger and the buffer it writes to.
func TestLogger(_ *testing.T) (*slog.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogContains fails t when expected is missing from buf.
func AssertLogContains(t *testing.T, buf *bytes.Buffer, expected string) {
	t.Helper()
	if !strings.Contains(buf.String(), expected) {
		t.Errorf("log output is missing %q:\n%s", expected, buf.String())
	}
}

// AssertLogNotContains fails t when unexpected shows up in buf. Used to
// check that tokens and passwords stay out of the log.
func AssertLogNotContains(t *testing.T, buf *bytes.Buffer, unexpected string) {
	t.Helper()
	if strings.Contains(buf.String(), unexpected) {
		t.Errorf("log output unexpectedly contains %q:\n%s", unexpected, buf.String())
	}
}
