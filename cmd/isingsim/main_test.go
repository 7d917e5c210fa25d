package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/sweep"
)

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("size: 24\nsteps: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	for flag, val := range map[string]string{
		"preset": "critical",
		"config": path,
		"steps":  "9",
	} {
		if err := cmd.Flags().Set(flag, val); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := resolveConfig(cmd, []string{"out.csv"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.T0 != 2.0 || cfg.EvolveSteps != 2000 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Size != 24 {
		t.Errorf("size = %d, file should override preset", cfg.Size)
	}
	if cfg.Steps != 9 {
		t.Errorf("steps = %d, flag should override file", cfg.Steps)
	}
	if cfg.Output != "out.csv" {
		t.Errorf("output = %q", cfg.Output)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newRootCmd(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != config.DefaultOutput || cfg.Size != config.DefaultSize {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestResolveConfigRejects(t *testing.T) {
	cmd := newRootCmd()
	_ = cmd.Flags().Set("preset", "nope")
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newRootCmd()
	_ = cmd.Flags().Set("tf", "0.05")
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("expected validation error for tf below t0")
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestSweepArchiveAndExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	db := filepath.Join(dir, "runs.db")
	metricsPath := filepath.Join(dir, "sweep.prom")

	out := execute(t, csvPath,
		"--size", "4", "--t0", "0.5", "--tf", "4", "--steps", "6",
		"--evolve", "5", "--average", "5", "--workers", "2", "--seed", "7",
		"--data", db, "--metrics-file", metricsPath, "--log-level", "error",
	)
	if !strings.Contains(out, "run id: ") {
		t.Fatalf("no run id in output:\n%s", out)
	}

	results, err := export.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 6 {
		t.Fatalf("csv has %d rows, want 6", len(results))
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prom), "isingsim_temperatures_completed_total 6") {
		t.Errorf("metrics missing completion count:\n%s", prom)
	}

	id := strings.TrimSpace(strings.SplitN(strings.SplitN(out, "run id: ", 2)[1], "\n", 2)[0])

	if list := execute(t, "list", "--data", db); !strings.Contains(list, id) {
		t.Errorf("list missing %s:\n%s", id, list)
	}

	exported := filepath.Join(dir, "exported.csv")
	execute(t, "export-csv", id, exported, "--data", db)
	back, err := export.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 6 || back[5].Temperature != 4 {
		t.Errorf("exported rows = %+v", back)
	}

	if a := execute(t, "analyze", id, "--data", db); !strings.Contains(a, "Onsager Tc") {
		t.Errorf("analyze output:\n%s", a)
	}
}

func TestSweepUnwritableOutput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		filepath.Join(t.TempDir(), "missing", "data.csv"),
		"--size", "4", "--steps", "2", "--no-store", "--log-level", "error",
	})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unwritable output")
	}
}

func TestSweepEcho(t *testing.T) {
	out := execute(t, filepath.Join(t.TempDir(), "data.csv"),
		"--size", "4", "--steps", "3", "--evolve", "1", "--average", "1",
		"--no-store", "--echo", "--log-level", "error",
	)
	if !strings.Contains(out, strings.Join(export.Header, ",")) {
		t.Errorf("echo output missing header:\n%s", out)
	}
}

func TestSweepSinglePointCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	execute(t, path,
		"--size", "4", "--t0", "2.5", "--tf", "2.5", "--steps", "1",
		"--evolve", "0", "--average", "1", "--no-store", "--log-level", "error",
	)

	results, err := export.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("csv has %d rows, want 1", len(results))
	}
	r := results[0]
	if r.Temperature != 2.5 {
		t.Errorf("T = %v, want 2.5", r.Temperature)
	}
	if r.Energy < -32 || r.Energy > 32 {
		t.Errorf("U = %v outside [-32, 32]", r.Energy)
	}
	if r.MagnetizationRMS < 0 || r.MagnetizationRMS > 16 {
		t.Errorf("M_rms = %v outside [0, 16]", r.MagnetizationRMS)
	}
}

func TestAbortedSweepLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")

	out, err := export.Create(path, 6)
	if err != nil {
		t.Fatal(err)
	}
	for i, temp := range []float64{1, 1.5, 2, 2.5, 3} {
		if err := out.Write(sweep.Result{Index: i, Temperature: temp, Energy: -20, MagnetizationRMS: 10}); err != nil {
			t.Fatal(err)
		}
	}

	fault := &sweep.SimulationError{Index: 5, Temperature: 3.5, Wrapped: sweep.ErrWorkerFault}
	if err := finishOutput(out, fault); !errors.Is(err, sweep.ErrWorkerFault) {
		t.Errorf("err = %v, want worker fault", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial output exists after fault: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("staging file left behind: %v", entries)
	}
}

func TestSinkFailureStillPublishesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	out, err := export.Create(path, 6)
	if err != nil {
		t.Fatal(err)
	}

	sinkErr := fmt.Errorf("%w: echo closed", sweep.ErrSink)
	if err := finishOutput(out, sinkErr); !errors.Is(err, sweep.ErrSink) {
		t.Errorf("err = %v, want sink error", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output missing after sink failure: %v", err)
	}
}

func TestCanceledSweepKeepsPreviousOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	previous := "T,U,M_rms\n1,-32,16\n"
	if err := os.WriteFile(path, []byte(previous), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path,
		"--size", "4", "--steps", "6", "--evolve", "5", "--average", "5",
		"--no-store", "--log-level", "error",
	})
	if err := cmd.ExecuteContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != previous {
		t.Errorf("aborted sweep replaced output:\n%s", data)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isingsim.yaml")
	execute(t, "init-config", path, "--preset", "quick")

	cfg, err := config.LoadOver(path, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	quick := config.GetPreset("quick")
	if cfg.Size != quick.Size || cfg.Steps != quick.Steps || cfg.T0 != quick.T0 {
		t.Errorf("written config %+v does not match preset", cfg)
	}

	cmd := newRootCmd()
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	resolved, err := resolveConfig(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Size != quick.Size {
		t.Errorf("size = %d, want %d", resolved.Size, quick.Size)
	}
}
