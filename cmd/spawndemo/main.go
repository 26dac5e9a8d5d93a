// Command spawndemo runs the pooled bullet/explosion demo on a fixed tick and
// prints pool statistics as JSON lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/coachpo/spawnpool/internal/config"
	"github.com/coachpo/spawnpool/internal/demo"
	"github.com/coachpo/spawnpool/internal/events"
	"github.com/coachpo/spawnpool/internal/host"
	"github.com/coachpo/spawnpool/internal/observability"
	"github.com/coachpo/spawnpool/internal/pool"
	"github.com/coachpo/spawnpool/internal/scene"
	"github.com/coachpo/spawnpool/internal/telemetry"
)

const (
	demoLoggerPrefix         = "spawndemo "
	shutdownTimeout          = 15 * time.Second
	lifecycleShutdownTimeout = 5 * time.Second
	poolClearTimeout         = 2 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

func main() {
	cfgPathFlag := parseFlags()
	ctx, cancel := newSignalContext()
	defer cancel()

	logger := newDemoLogger()

	configPath := resolveConfigPath(cfgPathFlag)

	appCfg, loadedFromFile, err := config.LoadOrDefault(ctx, configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if !loadedFromFile {
		logger.Printf("configuration file not found, using defaults")
	}
	logger.Printf("configuration initialised: env=%s, pools=%d", appCfg.Environment, len(appCfg.Pools))

	zapLogger, err := initLogging(appCfg.Logging)
	if err != nil {
		logger.Fatalf("initialise logging: %v", err)
	}

	telemetryProvider, err := initTelemetry(ctx, logger, appCfg.Environment, appCfg.Telemetry)
	if err != nil {
		logger.Fatalf("initialize telemetry: %v", err)
	}

	world := scene.NewWorld()
	bus := events.NewBus()
	manager := pool.NewManager(world, pool.WithEvents(bus))
	catalog := demo.NewCatalog(manager, demoSettings(appCfg.Demo))

	applied := manager.Bootstrap(appCfg.Definitions(catalog.Lookup))
	logger.Printf("pools bootstrapped: %d of %d definitions", applied, len(appCfg.Pools))

	pattern, err := demo.LoadPattern(appCfg.Demo.Pattern)
	if err != nil {
		logger.Fatalf("load placement pattern: %v", err)
	}
	controller := demo.NewController(manager, pattern, demo.ControllerConfig{
		AutoSpawn:         appCfg.Demo.AutoSpawn,
		AutoSpawnInterval: appCfg.Demo.AutoSpawnInterval,
		AutoSpawnCount:    appCfg.Demo.AutoSpawnCount,
	})

	reporter := newStatusReporter(os.Stdout, manager, appCfg.Host.StatusInterval)
	reporter.Subscribe(bus)
	subscribeLifecycle(bus, logger)

	loop := host.New(world, bus)
	loop.OnTick(controller.Tick)
	loop.OnTick(reporter.Tick)

	spawned := controller.SpawnBurst(appCfg.Demo.BurstSize)
	logger.Printf("initial burst spawned: %d (pattern=%s, autoSpawn=%t)", spawned, pattern.Name(), controller.AutoSpawn())

	var lifecycle conc.WaitGroup
	startHostLoop(ctx, &lifecycle, logger, loop, appCfg.Host.TickInterval)

	logger.Print("spawndemo started; awaiting shutdown signal")
	<-ctx.Done()
	logger.Print("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownStart := time.Now()
	performGracefulShutdown(shutdownCtx, logger, gracefulShutdownConfig{
		mainCancel: cancel,
		lifecycle:  &lifecycle,
		manager:    manager,
		reporter:   reporter,
		telemetry:  telemetryProvider,
		zap:        zapLogger,
	})

	logger.Printf("shutdown completed in %v", time.Since(shutdownStart))
}

func parseFlags() string {
	cfgPath := flag.String("config", "", fmt.Sprintf("Path to application configuration file (default: %s)", config.DefaultPath))
	flag.Parse()
	return *cfgPath
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newDemoLogger() *log.Logger {
	return log.New(os.Stdout, demoLoggerPrefix, log.LstdFlags|log.Lmicroseconds)
}

func initLogging(cfg config.LoggingConfig) (*zap.Logger, error) {
	structured, z, err := observability.NewLogger(cfg.LogConfig())
	if err != nil {
		return nil, err
	}
	observability.SetLogger(structured)
	return z, nil
}

func initTelemetry(ctx context.Context, logger *log.Logger, env config.Environment, cfg config.TelemetryConfig) (*telemetry.Provider, error) {
	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.Enabled = cfg.IsEnabled()
	if cfg.OTLPEndpoint != "" {
		telemetryCfg.OTLPEndpoint = cfg.OTLPEndpoint
	}
	if cfg.ServiceName != "" {
		telemetryCfg.ServiceName = cfg.ServiceName
	}
	telemetryCfg.Environment = env.TelemetryEnvironment()
	telemetryCfg.OTLPInsecure = cfg.OTLPInsecure
	telemetryCfg.EnableMetrics = cfg.EnableMetrics

	provider, err := telemetry.NewProvider(ctx, telemetryCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry provider: %w", err)
	}

	if telemetryCfg.Enabled {
		logger.Printf("telemetry initialized: endpoint=%s, service=%s", telemetryCfg.OTLPEndpoint, telemetryCfg.ServiceName)
	} else {
		logger.Printf("telemetry disabled")
	}
	return provider, nil
}

func demoSettings(cfg config.DemoConfig) demo.Settings {
	return demo.Settings{
		BulletSpeed:          cfg.BulletSpeed,
		BulletLifetime:       cfg.BulletLifetime,
		ExplosionDuration:    cfg.ExplosionDuration,
		FloatingTextDuration: cfg.FloatingTextDuration,
		FloatingTextRise:     cfg.FloatingTextRise,
	}
}

func subscribeLifecycle(bus *events.Bus, logger *log.Logger) {
	events.Subscribe(bus, func(evt pool.PoolCreated) {
		logger.Printf("pool created: key=%s template=%s", evt.Key, evt.Template)
	})
	events.Subscribe(bus, func(evt pool.PoolsCleared) {
		logger.Printf("pools cleared: %d", evt.Count)
	})
	events.Subscribe(bus, func(evt pool.ForeignDestroyed) {
		observability.Log().Warn("foreign instance destroyed",
			observability.F("pool", evt.Key),
			observability.F("name", evt.Node.Name()))
	})
}

func startHostLoop(ctx context.Context, lifecycle *conc.WaitGroup, logger *log.Logger, loop *host.Loop, interval time.Duration) {
	lifecycle.Go(func() {
		if err := loop.Run(ctx, interval); err != nil {
			logger.Printf("host loop: %v", err)
		}
	})
}

type gracefulShutdownConfig struct {
	mainCancel context.CancelFunc
	lifecycle  *conc.WaitGroup
	manager    *pool.Manager
	reporter   *statusReporter
	telemetry  *telemetry.Provider
	zap        *zap.Logger
}

// performGracefulShutdown clears the pools only once the host loop has exited.
func performGracefulShutdown(ctx context.Context, logger *log.Logger, cfg gracefulShutdownConfig) {
	shutdownStep := func(name string, timeout time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.Printf("shutdown: %s...", name)
		if err := fn(stepCtx); err != nil {
			logger.Printf("shutdown: %s failed: %v", name, err)
		} else {
			logger.Printf("shutdown: %s completed", name)
		}
	}

	logger.Print("shutdown: cancelling main context")
	if cfg.mainCancel != nil {
		cfg.mainCancel()
	}

	loopStopped := true
	if cfg.lifecycle != nil {
		shutdownStep("waiting for host loop", lifecycleShutdownTimeout, func(stepCtx context.Context) error {
			done := make(chan struct{})
			go func() {
				cfg.lifecycle.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stepCtx.Done():
				loopStopped = false
				return fmt.Errorf("timeout waiting for goroutines: %w", stepCtx.Err())
			}
		})
	}

	if cfg.manager != nil && loopStopped {
		shutdownStep("clearing pools", poolClearTimeout, func(context.Context) error {
			if cfg.reporter != nil {
				if err := cfg.reporter.Report(); err != nil {
					return err
				}
			}
			cfg.manager.ClearAll()
			return nil
		})
	}

	if cfg.telemetry != nil {
		shutdownStep("shutting down telemetry", telemetryShutdownTimeout, func(stepCtx context.Context) error {
			return cfg.telemetry.Shutdown(stepCtx)
		})
	}

	if cfg.zap != nil {
		_ = cfg.zap.Sync()
	}
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return filepath.Clean(config.DefaultPath)
}
