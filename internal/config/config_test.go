package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfg, src, err := Load(LoadOptions{WorkDir: t.TempDir(), Env: []string{"HOME=" + home, "XDG_CONFIG_HOME=" + t.TempDir()}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.DataDir = filepath.Join(home, ".leadconsole")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
	if src != (Sources{}) {
		t.Fatalf("expected no sources; got %+v", src)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	xdg := t.TempDir()
	work := t.TempDir()
	writeFile(t, filepath.Join(xdg, "leadconsole", "config.json"), `{
		// global settings
		"backend": "file",
		"debounce_ms": 300,
		"leads_per_page": 25,
	}`)
	writeFile(t, filepath.Join(work, ProjectFileName), `{
		"debounce_ms": 100, /* project wins over global */
		"latency_min_ms": 0,
		"latency_max_ms": 0
	}`)
	writeFile(t, filepath.Join(work, EnvFileName), "LEADCONSOLE_LEADS_PER_PAGE=5\nLEADCONSOLE_DATA_DIR=/tmp/from-dotenv\n")

	cfg, src, err := Load(LoadOptions{
		WorkDir: work,
		Env:     []string{"XDG_CONFIG_HOME=" + xdg, "LEADCONSOLE_DATA_DIR=/tmp/from-env"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "file" {
		t.Fatalf("backend = %q; want file (global)", cfg.Backend)
	}
	if cfg.DebounceMS != 100 {
		t.Fatalf("debounce = %d; want 100 (project)", cfg.DebounceMS)
	}
	if lo, hi := cfg.Latency(); lo != 0 || hi != 0 {
		t.Fatalf("latency = %v..%v; want explicit zero", lo, hi)
	}
	if cfg.LeadsPerPage != 5 {
		t.Fatalf("leads per page = %d; want 5 (.env)", cfg.LeadsPerPage)
	}
	if cfg.DataDir != "/tmp/from-env" {
		t.Fatalf("data dir = %q; want environment to beat .env", cfg.DataDir)
	}
	if src.Global == "" || src.Project == "" || src.DotEnv == "" {
		t.Fatalf("expected all sources; got %+v", src)
	}
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	_, _, err := Load(LoadOptions{WorkDir: t.TempDir(), ConfigPath: "missing.json", Env: []string{"XDG_CONFIG_HOME=" + t.TempDir()}})
	if err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"backend":  {"LEADCONSOLE_BACKEND=postgres"},
		"integer":  {"LEADCONSOLE_DEBOUNCE_MS=soon"},
		"latency":  {"LEADCONSOLE_LATENCY_MIN_MS=900", "LEADCONSOLE_LATENCY_MAX_MS=100"},
		"per page": {"LEADCONSOLE_LEADS_PER_PAGE=0"},
	}
	for name, env := range cases {
		env = append(env, "XDG_CONFIG_HOME="+t.TempDir(), "HOME="+t.TempDir())
		if _, _, err := Load(LoadOptions{WorkDir: t.TempDir(), Env: env}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad_BadJSONC(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeFile(t, filepath.Join(work, ProjectFileName), `{"backend": `)
	if _, _, err := Load(LoadOptions{WorkDir: work, Env: []string{"XDG_CONFIG_HOME=" + t.TempDir()}}); err == nil {
		t.Fatalf("expected parse error")
	}
}
