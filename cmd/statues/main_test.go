package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexshd/statues/internal/store"
)

func TestRun_PrintsSelectedScenarios(t *testing.T) {
	t.Setenv("STATUES_OTEL_ENDPOINT", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-scenarios", "dice,draw", "-display", "/", "-log-level", "error"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "== dice:") || !strings.Contains(s, "== draw:") {
		t.Fatalf("missing scenarios in output:\n%s", s)
	}
	if strings.Contains(s, "== alarm:") {
		t.Fatalf("unselected scenario printed:\n%s", s)
	}
	if strings.Index(s, "== dice:") > strings.Index(s, "== draw:") {
		t.Fatalf("results should follow catalog order:\n%s", s)
	}
	if !strings.Contains(s, " 7 : 6/36") {
		t.Fatalf("expected fraction display of 2d6:\n%s", s)
	}
}

func TestRun_RecordsRuns(t *testing.T) {
	t.Setenv("STATUES_OTEL_ENDPOINT", "")
	db := filepath.Join(t.TempDir(), "runs.db")

	var out bytes.Buffer
	args := []string{"-scenarios", "sprinkler", "-domain", "float", "-db", db, "-log-level", "error"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	s, err := store.Open(context.Background(), db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	runs, err := s.ListRuns(context.Background(), "sprinkler", 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Domain != "float" || runs[0].Values != 2 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestRun_UnknownScenario(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-scenarios", "poker", "-log-level", "error"}, &out)
	if err == nil || !strings.Contains(err.Error(), "unknown scenario poker") {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}
