package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("MaxUploadBytes: got %d, want 1 MiB", cfg.MaxUploadBytes)
	}
	if cfg.PaletteSize != 10 {
		t.Errorf("PaletteSize: got %d, want 10", cfg.PaletteSize)
	}
	if cfg.Recaptcha.Enabled() {
		t.Error("recaptcha should be disabled without a secret")
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
listen_addr: ":8080"
upload_dir: /var/lib/brightness
palette_size: 5
artifact_retention: 30m
recaptcha:
  site_key: site
  secret_key: secret
chart:
  dpi: 72
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.UploadDir != "/var/lib/brightness" || cfg.PaletteSize != 5 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.ArtifactRetention != 30*time.Minute {
		t.Errorf("ArtifactRetention: got %s", cfg.ArtifactRetention)
	}
	if !cfg.Recaptcha.Enabled() || cfg.Recaptcha.VerifyURL != DefaultRecaptchaVerifyURL {
		t.Errorf("recaptcha: %+v", cfg.Recaptcha)
	}
	// Untouched nested fields keep defaults
	if cfg.Chart.DPI != 72 || cfg.Chart.WidthInches != 6 {
		t.Errorf("chart: %+v", cfg.Chart)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("no_such_key: 1\n"), 0o600)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject unknown keys")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != Default().ListenAddr {
		t.Error("empty path should return defaults")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"IMAGE_BRIGHTNESS_LISTEN_ADDR":          ":9000",
		"IMAGE_BRIGHTNESS_PALETTE_SIZE":         "3",
		"IMAGE_BRIGHTNESS_MAX_UPLOAD_BYTES":     "2048",
		"IMAGE_BRIGHTNESS_LOG_LEVEL":            "debug",
		"IMAGE_BRIGHTNESS_LOG_JSON":             "true",
		"IMAGE_BRIGHTNESS_RECAPTCHA_SECRET_KEY": "s3cret",
		"IMAGE_BRIGHTNESS_RECAPTCHA_TIMEOUT":    "2s",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.PaletteSize != 3 || cfg.MaxUploadBytes != 2048 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || !cfg.LogJSON {
		t.Errorf("logging: level=%s json=%v", cfg.LogLevel, cfg.LogJSON)
	}
	if cfg.Recaptcha.SecretKey != "s3cret" || cfg.Recaptcha.Timeout != 2*time.Second {
		t.Errorf("recaptcha: %+v", cfg.Recaptcha)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"IMAGE_BRIGHTNESS_PALETTE_SIZE":       "ten",
		"IMAGE_BRIGHTNESS_LOG_JSON":           "maybe",
		"IMAGE_BRIGHTNESS_ARTIFACT_RETENTION": "forever",
	}))
	if err == nil {
		t.Fatal("ApplyEnv should fail")
	}
	for _, name := range []string{"PALETTE_SIZE", "LOG_JSON", "ARTIFACT_RETENTION"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.UploadDir = ""
	cfg.MaxUploadBytes = 0
	cfg.PaletteSize = -1
	cfg.LogLevel = "loud"
	cfg.Recaptcha.SecretKey = "secret"
	cfg.Chart.DPI = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	for _, want := range []string{"upload_dir", "max_upload_bytes", "palette_size", "log_level", "site_key", "dpi"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	var sb strings.Builder
	l := cfg.Logger("test", &sb)
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(sb.String(), "hidden") || !strings.Contains(sb.String(), "shown") {
		t.Errorf("unexpected log output: %q", sb.String())
	}
}
