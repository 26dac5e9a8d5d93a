package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("SPAWNPOOL_ENV", "")
	cfg, loaded, err := LoadOrDefault(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, EnvDev, cfg.Environment)
	assert.False(t, cfg.Telemetry.IsEnabled())
	require.Len(t, cfg.Pools, 3)
	assert.Equal(t, 10, cfg.Demo.BurstSize)
	assert.Equal(t, 16*time.Millisecond, cfg.Host.TickInterval)
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv("SPAWNPOOL_ENV", "")
	path := writeConfig(t, `
environment: STAGING
logging:
  level: DEBUG
  encoding: console
telemetry:
  otlpEndpoint: http://collector:4318
  serviceName: " demo "
host:
  tickInterval: 20ms
  statusInterval: 2s
pools:
  - key: bullet
    initialSize: 5
    maxSize: 8
    autoExpand: false
  - key: sparks
    template: explosion
demo:
  burstSize: 4
  autoSpawnInterval: 500ms
  pattern: scripts/ring.js
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, "staging", cfg.Environment.TelemetryEnvironment())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "demo", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Telemetry.IsEnabled())
	assert.Equal(t, 20*time.Millisecond, cfg.Host.TickInterval)
	assert.Equal(t, 2*time.Second, cfg.Host.StatusInterval)

	require.Len(t, cfg.Pools, 2)
	assert.Equal(t, "bullet", cfg.Pools[0].Template)
	require.NotNil(t, cfg.Pools[0].AutoExpand)
	assert.False(t, *cfg.Pools[0].AutoExpand)
	assert.Equal(t, pool.DefaultMaxSize, cfg.Pools[1].MaxSize)
	assert.True(t, *cfg.Pools[1].AutoExpand)

	assert.Equal(t, 4, cfg.Demo.BurstSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Demo.AutoSpawnInterval)
	assert.Equal(t, 3, cfg.Demo.AutoSpawnCount)
	assert.Equal(t, filepath.Clean("scripts/ring.js"), cfg.Demo.Pattern)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPAWNPOOL_ENV", "prod")
	t.Setenv("SPAWNPOOL_LOG_LEVEL", "warn")
	path := writeConfig(t, "environment: dev\n")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, EnvProd, cfg.Environment)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateAggregatesProblems(t *testing.T) {
	t.Setenv("SPAWNPOOL_ENV", "")
	path := writeConfig(t, `
environment: qa
logging:
  encoding: xml
pools:
  - key: bullet
    initialSize: -1
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment must be one of")
	assert.Contains(t, err.Error(), "logging encoding must be json or console")
	assert.Contains(t, err.Error(), "pools[0]: initialSize must be >=0")
}

func TestDefinitionsResolveTemplates(t *testing.T) {
	bullet := scene.NewTemplate("bullet", nil)
	lookup := func(name string) *scene.Template {
		if name == "bullet" {
			return bullet
		}
		return nil
	}

	cfg := AppConfig{Pools: []PoolConfig{
		{Key: "bullet", InitialSize: 2},
		{Key: "ghost", Template: "unknown"},
		{Key: ""},
	}}
	cfg.normalise()

	defs := cfg.Definitions(lookup)
	require.Len(t, defs, 3)
	assert.Same(t, bullet, defs[0].Template)
	assert.Equal(t, 2, defs[0].InitialSize)
	assert.Equal(t, pool.DefaultMaxSize, defs[0].MaxSize)
	assert.True(t, defs[0].AutoExpand)
	assert.Nil(t, defs[1].Template)
	assert.False(t, defs[1].Valid())
	assert.False(t, defs[2].Valid())

	m := pool.NewManager(scene.NewWorld())
	assert.Equal(t, 1, m.Bootstrap(defs))
}
