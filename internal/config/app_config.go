// Package config manages application configuration loading and validation.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

// DefaultPath is where the demo command looks for its configuration.
const DefaultPath = "config/app.yaml"

// LoggingConfig selects the zap backend settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Encoding    string `yaml:"encoding"`
}

// LogConfig converts the section into the observability builder input.
func (c LoggingConfig) LogConfig() observability.LogConfig {
	return observability.LogConfig{
		Level:       c.Level,
		Development: c.Development,
		Encoding:    c.Encoding,
		OutputPaths: nil,
	}
}

// TelemetryConfig configures OTLP exporters (metrics only).
type TelemetryConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	OTLPEndpoint  string `yaml:"otlpEndpoint"`
	ServiceName   string `yaml:"serviceName"`
	OTLPInsecure  bool   `yaml:"otlpInsecure"`
	EnableMetrics bool   `yaml:"enableMetrics"`
}

// IsEnabled reports whether telemetry is on. Unset means on.
func (c TelemetryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// HostConfig paces the tick loop and the status reporter.
type HostConfig struct {
	TickInterval   time.Duration `yaml:"tickInterval"`
	StatusInterval time.Duration `yaml:"statusInterval"`
}

// DemoConfig tunes the bullet/explosion/floating text demo.
type DemoConfig struct {
	BurstSize            int           `yaml:"burstSize"`
	AutoSpawn            bool          `yaml:"autoSpawn"`
	AutoSpawnInterval    time.Duration `yaml:"autoSpawnInterval"`
	AutoSpawnCount       int           `yaml:"autoSpawnCount"`
	BulletSpeed          float64       `yaml:"bulletSpeed"`
	BulletLifetime       time.Duration `yaml:"bulletLifetime"`
	ExplosionDuration    time.Duration `yaml:"explosionDuration"`
	FloatingTextDuration time.Duration `yaml:"floatingTextDuration"`
	FloatingTextRise     float64       `yaml:"floatingTextRise"`
	Pattern              string        `yaml:"pattern"`
}

// AppConfig is the unified application configuration sourced from YAML.
type AppConfig struct {
	Environment Environment     `yaml:"environment"`
	Logging     LoggingConfig   `yaml:"logging"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Host        HostConfig      `yaml:"host"`
	Pools       []PoolConfig    `yaml:"pools"`
	Demo        DemoConfig      `yaml:"demo"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	cfg := AppConfig{
		Environment: EnvDev,
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
			Encoding:    "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:       boolPtr(false),
			OTLPEndpoint:  "http://localhost:4318",
			ServiceName:   "spawnpool",
			OTLPInsecure:  true,
			EnableMetrics: true,
		},
		Host: HostConfig{},
		Pools: []PoolConfig{
			{Key: "bullet", Template: "bullet", InitialSize: 20, MaxSize: 50, AutoExpand: boolPtr(true)},
			{Key: "explosion", Template: "explosion", InitialSize: 10, MaxSize: 30, AutoExpand: boolPtr(true)},
			{Key: "floating_text", Template: "floating_text", InitialSize: 10, MaxSize: 30, AutoExpand: boolPtr(true)},
		},
		Demo: DemoConfig{AutoSpawn: true},
	}
	cfg.normalise()
	return cfg
}

// Load reads and validates an AppConfig from the provided YAML file.
func Load(ctx context.Context, configPath string) (AppConfig, error) {
	_ = ctx

	reader, closer, err := openConfigFile(configPath)
	if err != nil {
		return AppConfig{}, err
	}
	defer closer()

	bytes, err := io.ReadAll(reader)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.loadEnv()
	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads configPath, falling back to Default when the file does
// not exist. The boolean reports whether the file was read.
func LoadOrDefault(ctx context.Context, configPath string) (AppConfig, bool, error) {
	cfg, err := Load(ctx, configPath)
	if err == nil {
		return cfg, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, false, err
	}
	cfg = Default()
	cfg.loadEnv()
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, false, err
	}
	return cfg, false, nil
}

// loadEnv applies the SPAWNPOOL_* overrides.
func (c *AppConfig) loadEnv() {
	if env := strings.TrimSpace(os.Getenv("SPAWNPOOL_ENV")); env != "" {
		c.Environment = Environment(env)
	}
	if level := strings.TrimSpace(os.Getenv("SPAWNPOOL_LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		c.Telemetry.OTLPEndpoint = endpoint
	}
}

func (c *AppConfig) normalise() {
	c.Environment = Environment(strings.ToLower(strings.TrimSpace(string(c.Environment))))
	if c.Environment == "" {
		c.Environment = EnvDev
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Encoding = strings.ToLower(strings.TrimSpace(c.Logging.Encoding))
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}

	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "spawnpool"
	}

	c.Host.applyDefaults()
	for i := range c.Pools {
		c.Pools[i].applyDefaults()
	}
	c.Demo.applyDefaults()
}

func (c *HostConfig) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = 16 * time.Millisecond
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = time.Second
	}
}

func (c *DemoConfig) applyDefaults() {
	if c.BurstSize == 0 {
		c.BurstSize = 10
	}
	if c.AutoSpawnInterval <= 0 {
		c.AutoSpawnInterval = 200 * time.Millisecond
	}
	if c.AutoSpawnCount == 0 {
		c.AutoSpawnCount = 3
	}
	if c.BulletSpeed == 0 {
		c.BulletSpeed = 10
	}
	if c.BulletLifetime <= 0 {
		c.BulletLifetime = 2 * time.Second
	}
	if c.ExplosionDuration <= 0 {
		c.ExplosionDuration = time.Second
	}
	if c.FloatingTextDuration <= 0 {
		c.FloatingTextDuration = time.Second
	}
	if c.FloatingTextRise == 0 {
		c.FloatingTextRise = 1.5
	}
	c.Pattern = strings.TrimSpace(c.Pattern)
	if c.Pattern != "" {
		c.Pattern = filepath.Clean(c.Pattern)
	}
}

// Validate performs semantic validation on the configuration. Every problem
// found is reported in one aggregated error.
func (c AppConfig) Validate() error {
	var problems []error

	switch c.Environment {
	case EnvDev, EnvStaging, EnvProd:
	default:
		problems = append(problems, fmt.Errorf("environment must be one of dev, staging, prod"))
	}

	switch c.Logging.Encoding {
	case "json", "console":
	default:
		problems = append(problems, fmt.Errorf("logging encoding must be json or console"))
	}

	if c.Telemetry.IsEnabled() && c.Telemetry.OTLPEndpoint == "" {
		problems = append(problems, fmt.Errorf("telemetry otlpEndpoint required when enabled"))
	}

	if c.Host.TickInterval <= 0 {
		problems = append(problems, fmt.Errorf("host tickInterval must be >0"))
	}
	if c.Host.StatusInterval <= 0 {
		problems = append(problems, fmt.Errorf("host statusInterval must be >0"))
	}

	for i, p := range c.Pools {
		if err := p.validate(); err != nil {
			problems = append(problems, fmt.Errorf("pools[%d]: %w", i, err))
		}
	}

	if c.Demo.BurstSize < 0 {
		problems = append(problems, fmt.Errorf("demo burstSize must be >=0"))
	}
	if c.Demo.AutoSpawnCount < 0 {
		problems = append(problems, fmt.Errorf("demo autoSpawnCount must be >=0"))
	}
	if c.Demo.BulletSpeed < 0 {
		problems = append(problems, fmt.Errorf("demo bulletSpeed must be >=0"))
	}

	return observability.AggregateErrors("validate config", problems)
}

// Definitions resolves the configured pools into pool definitions. lookup
// maps a template name to a template; names it does not know resolve to a nil
// template, which bootstrap skips.
func (c AppConfig) Definitions(lookup func(name string) *scene.Template) []pool.Definition {
	defs := make([]pool.Definition, 0, len(c.Pools))
	for _, p := range c.Pools {
		defs = append(defs, p.Definition(lookup))
	}
	return defs
}

func openConfigFile(path string) (io.Reader, func(), error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		candidate = DefaultPath
	}
	candidate = filepath.Clean(candidate)

	file, err := os.Open(candidate) // #nosec G304 -- path is operator controlled.
	if err != nil {
		return nil, nil, fmt.Errorf("open app config: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
