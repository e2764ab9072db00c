// Package di wires the application together: configuration, logging,
// the native loader and the host façade.
package di

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/dawg-ai/claphost/internal/core/host"
	"github.com/dawg-ai/claphost/internal/infrastructure/clap"
	"github.com/dawg-ai/claphost/internal/infrastructure/config"
	"github.com/dawg-ai/claphost/internal/logging"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger hclog.Logger
	Loader *clap.Loader
	Host   *host.Host
}

// Options tweak container construction from CLI flags.
type Options struct {
	ConfigPath string
	Debug      bool
}

// NewContainer creates and configures the dependency container.
func NewContainer(opts Options) (*Container, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.LogLevel
	if opts.Debug {
		level = "debug"
	}
	logger := logging.New(level)

	loader := clap.NewLoader(logging.NewNativeLogger(opts.Debug))
	pluginHost := host.New(loader, logger.Named("host"))

	return &Container{
		Config: cfg,
		Logger: logger,
		Loader: loader,
		Host:   pluginHost,
	}, nil
}

// Shutdown unloads every plugin still registered.
func (c *Container) Shutdown(ctx context.Context) error {
	return c.Host.Close(ctx)
}
