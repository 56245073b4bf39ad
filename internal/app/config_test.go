package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	return dir
}

// resolveForTest runs a hidden probe command so options resolve exactly
// as they would for a real command, flags included.
func resolveForTest(t *testing.T, args ...string) *globalOptions {
	t.Helper()
	var resolved *globalOptions
	cmd, opts := newRootCommand()
	cmd.AddCommand(&cobra.Command{
		Use:    "probe",
		Hidden: true,
		RunE: func(c *cobra.Command, _ []string) error {
			ro, err := resolveGlobalOptions(c, opts)
			if err != nil {
				return err
			}
			resolved = ro
			return nil
		},
	})
	cmd.SetArgs(append([]string{"probe"}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resolved == nil {
		t.Fatalf("probe never ran")
	}
	return resolved
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := isolateConfig(t)
	cfgDir := filepath.Join(dir, "optipresta")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "store = \"json\"\ntz = \"Europe/Paris\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OPTIPRESTA_STORE", "sqlite")

	ro := resolveForTest(t)
	if ro.Store != "sqlite" {
		t.Fatalf("env should beat config: %s", ro.Store)
	}
	if ro.TZ != "Europe/Paris" {
		t.Fatalf("config tz lost: %s", ro.TZ)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("OPTIPRESTA_STORE", "sqlite")
	ro := resolveForTest(t, "--store", "json")
	if ro.Store != "json" {
		t.Fatalf("flag should beat env: %s", ro.Store)
	}
}

func TestProfileOverlay(t *testing.T) {
	dir := isolateConfig(t)
	cfgDir := filepath.Join(dir, "optipresta")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "tz = \"Europe/Paris\"\nlisten = \"127.0.0.1:8990\"\n" +
		"[profiles.kiosk]\nlisten = \"0.0.0.0:8080\"\nno_auth = true\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ro := resolveForTest(t, "--profile", "kiosk")
	if ro.Listen != "0.0.0.0:8080" || !ro.NoAuth {
		t.Fatalf("profile overlay not applied: %+v", ro)
	}
	if ro.TZ != "Europe/Paris" {
		t.Fatalf("base values lost under profile: %s", ro.TZ)
	}
}

func TestDefaultPathsFilledIn(t *testing.T) {
	dir := isolateConfig(t)
	ro := resolveForTest(t)
	if ro.StorePath == "" || ro.SessionPath == "" {
		t.Fatalf("defaults missing: %+v", ro)
	}
	if filepath.Dir(filepath.Dir(ro.StorePath)) != dir {
		t.Fatalf("store path not under data home: %s", ro.StorePath)
	}
}
