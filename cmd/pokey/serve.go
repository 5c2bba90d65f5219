package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/pokey/internal/server"
)

// ServeCmd runs the WebSocket table server
type ServeCmd struct {
	Config      string         `short:"c" default:"pokey.hcl" env:"POKEY_CONFIG" help:"Path to HCL configuration file"`
	Addr        string         `short:"a" env:"POKEY_ADDR" help:"Address to listen on (overrides config)"`
	Debug       bool           `env:"POKEY_DEBUG" help:"Enable debug logging"`
	LogFormat   string         `default:"text" enum:"text,json,logfmt" env:"POKEY_LOG_FORMAT" help:"Log output format (text, json, logfmt)"`
	NoColor     bool           `env:"NO_COLOR" help:"Disable coloured log output"`
	Seed        *int64         `env:"POKEY_SEED" help:"Deterministic shuffle seed (optional)"`
	TurnTimeout *time.Duration `env:"POKEY_TURN_TIMEOUT" help:"Fold players who take longer than this to act, 0 disables (overrides config)"`
	AccessLog   bool           `default:"true" negatable:"" help:"Log HTTP requests"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(os.Stderr, cfg.Server.LogLevel, c.LogFormat, c.NoColor)
	if err != nil {
		return err
	}

	opts := c.options(cfg)
	srv := server.NewServer(opts, logger)
	if err := cfg.CreateTables(srv); err != nil {
		return err
	}

	logger.Info("Starting pokey server",
		"version", version,
		"addr", opts.Addr,
		"tables", len(cfg.Tables),
		"turnTimeout", opts.TurnTimeout)
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// options merges the config file with command line overrides
func (c *ServeCmd) options(cfg *server.ServerConfig) server.Options {
	opts := server.Options{
		Addr:           cfg.GetServerAddress(),
		TurnTimeout:    cfg.TurnTimeout(),
		Seed:           c.Seed,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessLog:      c.AccessLog,
	}
	if c.Addr != "" {
		opts.Addr = c.Addr
	}
	if c.TurnTimeout != nil {
		opts.TurnTimeout = *c.TurnTimeout
	}
	return opts
}
