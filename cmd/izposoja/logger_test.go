package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newLevelRouter(&out, &errOut)).With("component", "sweep")

	logger.Debug("hidden")
	logger.Info("item rented")
	logger.Warn("notice not delivered")
	logger.Error("sweep failed")

	if strings.Contains(out.String(), "hidden") || strings.Contains(errOut.String(), "hidden") {
		t.Error("debug records should be dropped")
	}
	if !strings.Contains(out.String(), "item rented") || !strings.Contains(out.String(), "notice not delivered") {
		t.Errorf("expected info and warn on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "sweep failed") {
		t.Error("error records should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "sweep failed") || !strings.Contains(errOut.String(), "component=sweep") {
		t.Errorf("expected error with attrs on stderr, got %q", errOut.String())
	}
}
