package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FORMSTEP_DATA_DIR", "FORMSTEP_LOG_LEVEL", "FORMSTEP_LOG_FORMAT", "FORMSTEP_OUTPUT",
		"FORMSTEP_HTTP_TIMEOUT", "FORMSTEP_SHORT_ID_MIN_LENGTH", "FORMSTEP_SANITIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		DataDir:          ".formstep",
		LogLevel:         "info",
		LogFormat:        "text",
		Output:           "text",
		HTTPTimeout:      10 * time.Second,
		ShortIDMinLength: 8,
		SanitizeSchemas:  true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.StoreDir() != filepath.Join(".formstep", "forms") {
		t.Fatalf("unexpected store dir %q", cfg.StoreDir())
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	env := filepath.Join(t.TempDir(), "test.env")
	content := "FORMSTEP_DATA_DIR=/tmp/forms\nFORMSTEP_OUTPUT=yaml\nFORMSTEP_SANITIZE=false\n"
	if err := os.WriteFile(env, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("FORMSTEP_OUTPUT", "json")

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/forms" || cfg.Output != "json" || cfg.SanitizeSchemas {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"FORMSTEP_HTTP_TIMEOUT":        "soon",
		"FORMSTEP_SHORT_ID_MIN_LENGTH": "eight",
		"FORMSTEP_OUTPUT":              "html",
		"FORMSTEP_LOG_FORMAT":          "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
