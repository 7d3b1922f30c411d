package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/pixel-marshal/internal/bridge"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvPoolSize, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Log:    LogConfig{Level: "info"},
		Bridge: BridgeConfig{Preset: bridge.RowMajorImage},
		Pool:   PoolConfig{Size: runtime.NumCPU()},
		Output: OutputConfig{Dir: "."},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvPoolSize, "")

	path := writeConfig(t, `
log:
  level: debug
  development: true
bridge:
  preset: planar-native
pool:
  size: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Log:    LogConfig{Level: "debug", Development: true},
		Bridge: BridgeConfig{Preset: bridge.PlanarNative},
		Pool:   PoolConfig{Size: 3},
		Output: OutputConfig{Dir: "."},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvPoolSize, " 7 ")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\npool:\n  size: 2\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Pool.Size != 7 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  string
	}{
		{"unknown preset", "bridge:\n  preset: sideways\n", ""},
		{"zero pool", "pool:\n  size: 0\n", ""},
		{"bad level", "log:\n  level: loud\n", ""},
		{"unknown field", "colour: red\n", ""},
		{"empty output", "output:\n  dir: \"\"\n", ""},
		{"malformed yaml", "log: [\n", ""},
		{"bad env pool", "", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, "")
			t.Setenv(EnvPoolSize, tt.env)
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_UnknownPresetWrapsSentinel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvPoolSize, "")

	_, err := Load(writeConfig(t, "bridge:\n  preset: sideways\n"))
	if !errors.Is(err, bridge.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLogConfig_Build(t *testing.T) {
	for _, lc := range []LogConfig{{Level: "info"}, {Level: "debug", Development: true}} {
		logger, err := lc.Build()
		if err != nil {
			t.Fatalf("Build(%+v): %v", lc, err)
		}
		if ce := logger.Check(zapcore.DebugLevel, "probe"); (ce != nil) != (lc.Level == "debug") {
			t.Errorf("Build(%+v): debug enabled = %v", lc, ce != nil)
		}
	}

	if _, err := (LogConfig{Level: "loud"}).Build(); err == nil {
		t.Error("Build should reject an unknown level")
	}
}
