package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/critters/persist"
)

func TestRunHeadlessWritesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	save := filepath.Join(dir, "save")

	err := run(options{seed: 1, headless: true, maxTicks: 30, outputDir: out, saveDir: save})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv", "generations.csv"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	survivors, err := persist.LoadFile(filepath.Join(save, "gen1.bin"))
	if err != nil {
		t.Fatalf("loading saved survivors: %v", err)
	}
	if len(survivors) == 0 {
		t.Error("no survivors saved")
	}
}

func TestRunReturnsSaveError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// A save directory below a regular file cannot be created.
	err := run(options{seed: 1, headless: true, maxTicks: 5, outputDir: out, saveDir: filepath.Join(blocker, "save")})
	if err == nil {
		t.Fatal("expected an error for an unusable save directory")
	}
	t.Logf("run error: %v", err)

	data, err := os.ReadFile(filepath.Join(out, "config.yaml"))
	if err != nil || len(data) == 0 {
		t.Errorf("config snapshot missing after failed run: %v", err)
	}
}

func TestRunRejectsMissingSurvivors(t *testing.T) {
	err := run(options{headless: true, maxTicks: 1, loadPath: filepath.Join(t.TempDir(), "none.bin")})
	if err == nil {
		t.Fatal("expected an error for a missing survivor file")
	}
}
