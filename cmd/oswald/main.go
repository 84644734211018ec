// Command oswald wires the example feature module into the process-wide
// container, serves a CreateUserCommand and, when enabled, exposes the
// dispatcher over HTTP until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/oswald/config"
	"github.com/kbukum/oswald/di"
	"github.com/kbukum/oswald/example/createuser"
	"github.com/kbukum/oswald/feature"
	"github.com/kbukum/oswald/logger"
	"github.com/kbukum/oswald/observability"
	"github.com/kbukum/oswald/server"
	"github.com/kbukum/oswald/version"
)

const serviceName = "oswald"

// Config is the process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config        `yaml:"server" mapstructure:"server"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load[Config](serviceName, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oswald: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("oswald exited with error", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info(version.Banner(cfg.Name))

	opts := []feature.Option{feature.WithLogger(log)}
	if cfg.Observability.Enabled {
		shutdown, metricsOpt, err := initObservability(ctx, &cfg.Observability)
		if err != nil {
			return err
		}
		defer shutdown()
		opts = append(opts, metricsOpt)
	}

	container := di.GetInstance()
	dispatcher := feature.NewDispatcher(opts...)
	if err := createuser.Install(container, dispatcher); err != nil {
		return fmt.Errorf("installing createuser: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn("closing container", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	command := createuser.CreateUserCommand{Name: "John Doe", Email: "john.doe@example.com"}
	if _, err := dispatcher.Serve(ctx, command); err != nil {
		return err
	}

	if !cfg.Server.Enabled {
		return nil
	}
	srv := server.New(cfg.Server, cfg.Name, dispatcher, container, log)
	return srv.Run(ctx)
}

// initObservability installs exporting tracer and meter providers and returns
// their shutdown together with the dispatcher metrics option.
func initObservability(ctx context.Context, cfg *observability.Config) (func(), feature.Option, error) {
	tp, err := observability.InitTracer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	mp, err := observability.InitMeter(ctx, cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	metrics, err := observability.NewDispatchMetrics(observability.Meter())
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", logger.Fields(logger.FieldError, err.Error()))
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("meter shutdown", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	return shutdown, feature.WithMetrics(metrics), nil
}
