package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/ironsheep/pixel-marshal/internal/config"
	"github.com/ironsheep/pixel-marshal/internal/rawio"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvPoolSize, "2")

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "pixel-marshal dev\n") {
		t.Errorf("unexpected header: %q", out)
	}

	var info map[string]interface{}
	body := out[strings.Index(out, "go_version"):]
	if err := yaml.Unmarshal([]byte(body), &info); err != nil {
		t.Fatalf("build info is not YAML: %v", err)
	}
	if info["display"] != false || info["unnamed_placeholder"] != "[unnamed]" {
		t.Errorf("unexpected build info: %v", info)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 4, 2, color.NRGBA{200, 100, 50, 255})
	b := writePNG(t, dir, "b.png", 2, 2, color.NRGBA{0, 0, 0, 255})
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "run", "rm[1] dup", a, b, "--names", "left,right", "--out", outDir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 result lines, got %q", out)
	}
	for _, want := range []string{"left.png", "left_1.png"} {
		if _, err := os.Stat(filepath.Join(outDir, want)); err != nil {
			t.Errorf("missing output %s: %v", want, err)
		}
	}
	if !strings.Contains(lines[0], "4x2x1x3") {
		t.Errorf("result line should carry the layout: %q", lines[0])
	}
}

func TestRunCommand_Raw(t *testing.T) {
	outDir := t.TempDir()
	if _, err := execute(t, "run", "new 3,3,2,1,0.25 name[0] vol", "--raw", "--out", outDir); err != nil {
		t.Fatalf("run: %v", err)
	}
	buf, err := rawio.ReadFile(filepath.Join(outDir, "vol"+rawio.Extension))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if v, _ := buf.At(2, 2, 1, 0); v != 0.25 {
		t.Errorf("snapshot value: got %v, want 0.25", v)
	}
}

func TestRunCommand_Errors(t *testing.T) {
	if _, err := execute(t, "run", "   "); err == nil || !strings.Contains(err.Error(), "empty command") {
		t.Errorf("blank command: got %v", err)
	}
	if _, err := execute(t, "run", "explode", "--out", t.TempDir()); err == nil || !strings.Contains(err.Error(), "unknown command 'explode'") {
		t.Errorf("unknown engine command: got %v", err)
	}
	if _, err := execute(t, "run", "print", "/missing.png"); err == nil {
		t.Error("missing input should fail")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "one.png", 2, 2, color.White)
	b := writePNG(t, dir, "two.png", 3, 1, color.Black)
	outDir := filepath.Join(dir, "out")

	if _, err := execute(t, "batch", "dup", a, b, "--out", outDir); err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, want := range []string{"one/one.png", "one/one_1.png", "two/two.png", "two/two_1.png"} {
		if _, err := os.Stat(filepath.Join(outDir, want)); err != nil {
			t.Errorf("missing output %s: %v", want, err)
		}
	}
}

func TestBatchCommand_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "one.png", 2, 2, color.White)

	_, err := execute(t, "batch", "explode", a, "--out", filepath.Join(dir, "out"))
	if err == nil || !strings.Contains(err.Error(), "1 of 1 files failed") {
		t.Errorf("expected a batch failure, got %v", err)
	}
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "rgba.png", 5, 4, color.NRGBA{1, 2, 3, 4})

	out, err := execute(t, "info", path, "--preset", "planar-native", "--dtype", "uint8")
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	var reports []fileReport
	if err := yaml.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("info output is not YAML: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}
	r := reports[0]
	if r.Width != 5 || r.Height != 4 || r.Spectrum != 4 || r.Format != "png" {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Export.Preset != "planar-native" || r.Export.DType != "uint8" {
		t.Errorf("unexpected export: %+v", r.Export)
	}
	if len(r.Export.Shape) != 3 || r.Export.Shape[0] != 5 || r.Export.Shape[1] != 4 || r.Export.Shape[2] != 4 {
		t.Errorf("unexpected shape: %v", r.Export.Shape)
	}
}

func TestInfoCommand_Errors(t *testing.T) {
	path := writePNG(t, t.TempDir(), "x.png", 1, 1, color.White)

	if _, err := execute(t, "info", path, "--preset", "sideways"); err == nil {
		t.Error("unknown preset should fail")
	}
	if _, err := execute(t, "info", path, "--dtype", "complex64"); err == nil {
		t.Error("unknown dtype should fail")
	}
}

func TestConfigFlag(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("bridge:\n  preset: sideways\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfgPath, "version"); err == nil {
		t.Error("an invalid configuration should stop every command")
	}
}

func TestServeCommand(t *testing.T) {
	cmd := newRootCommand()
	t.Setenv(config.EnvLogLevel, "error")

	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"serve"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.Contains(out.String(), `"id":7`) {
		t.Errorf("expected a ping response, got %q", out.String())
	}
}
