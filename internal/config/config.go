// Package config defines the runtime configuration passed to the HTTP and
// MCP front ends at startup.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// IMAGE_BRIGHTNESS_* environment variables, then command-line flags (bound by
// the cli package). Nothing here is process-global; callers own the Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-brightness/internal/chart"
	"github.com/ironsheep/image-brightness/internal/imaging"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "IMAGE_BRIGHTNESS_"

// DefaultRecaptchaVerifyURL is Google's siteverify endpoint.
const DefaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Config is the complete runtime configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// UploadDir holds request-scoped artifact directories.
	UploadDir string `yaml:"upload_dir"`

	// MaxUploadBytes bounds the size of an uploaded image.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// PaletteSize is the number of top colors reported per image.
	PaletteSize int `yaml:"palette_size"`

	// ArtifactRetention is how long stored artifacts are kept. Zero keeps
	// them forever.
	ArtifactRetention time.Duration `yaml:"artifact_retention"`

	Recaptcha Recaptcha     `yaml:"recaptcha"`
	Chart     chart.Options `yaml:"chart"`

	// LogLevel is one of trace, debug, info, warn, error, off.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `yaml:"log_json"`
}

// Recaptcha configures the anti-abuse check on uploads. Verification is
// disabled when SecretKey is empty.
type Recaptcha struct {
	SiteKey   string        `yaml:"site_key"`
	SecretKey string        `yaml:"secret_key"`
	VerifyURL string        `yaml:"verify_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Enabled reports whether uploads must carry a verified token.
func (r Recaptcha) Enabled() bool {
	return r.SecretKey != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:        "127.0.0.1:5000",
		UploadDir:         "uploads",
		MaxUploadBytes:    imaging.DefaultMaxUploadBytes,
		PaletteSize:       imaging.DefaultPaletteSize,
		ArtifactRetention: time.Hour,
		Recaptcha: Recaptcha{
			VerifyURL: DefaultRecaptchaVerifyURL,
			Timeout:   10 * time.Second,
		},
		Chart:    chart.DefaultOptions(),
		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.UnmarshalYAMLBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// UnmarshalYAMLBytes overlays YAML document data onto c. Keys absent from
// the document keep their current values; unknown keys are rejected.
func (c *Config) UnmarshalYAMLBytes(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from IMAGE_BRIGHTNESS_* variables. lookup is
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("LISTEN_ADDR", &c.ListenAddr)
	str("UPLOAD_DIR", &c.UploadDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("RECAPTCHA_SITE_KEY", &c.Recaptcha.SiteKey)
	str("RECAPTCHA_SECRET_KEY", &c.Recaptcha.SecretKey)
	str("RECAPTCHA_VERIFY_URL", &c.Recaptcha.VerifyURL)
	integer("PALETTE_SIZE", &c.PaletteSize)
	duration("ARTIFACT_RETENTION", &c.ArtifactRetention)
	duration("RECAPTCHA_TIMEOUT", &c.Recaptcha.Timeout)

	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err))
		} else {
			c.MaxUploadBytes = n
		}
	}
	if v, ok := lookup(EnvPrefix + "LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLOG_JSON: %w", EnvPrefix, err))
		} else {
			c.LogJSON = b
		}
	}

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload_dir must not be empty"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.PaletteSize <= 0 {
		errs = append(errs, fmt.Errorf("palette_size must be positive, got %d", c.PaletteSize))
	}
	if c.ArtifactRetention < 0 {
		errs = append(errs, fmt.Errorf("artifact_retention must not be negative, got %s", c.ArtifactRetention))
	}
	if err := c.Chart.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Recaptcha.Enabled() {
		if c.Recaptcha.SiteKey == "" {
			errs = append(errs, errors.New("recaptcha.site_key is required when recaptcha.secret_key is set"))
		}
		if c.Recaptcha.VerifyURL == "" {
			errs = append(errs, errors.New("recaptcha.verify_url must not be empty"))
		}
		if c.Recaptcha.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("recaptcha.timeout must be positive, got %s", c.Recaptcha.Timeout))
		}
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// Logger builds the root logger described by the configuration.
func (c *Config) Logger(name string, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.LogLevel),
		Output:     out,
		JSONFormat: c.LogJSON,
		Color:      hclog.AutoColor,
	})
}
