// Package main implements the entry point for the usergraph service, a
// relational dataset of users, profiles, posts, and member types exposed
// over GraphQL and REST from one in-memory store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/usergraph/config"
	"github.com/c360/usergraph/graphql"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/rest"
	"github.com/c360/usergraph/store"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "usergraph"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := loadConfiguration(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	slog.Info("Starting usergraph",
		"version", Version,
		"build_time", BuildTime,
		"address", cfg.Server.BindAddress)

	server, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	return runWithSignalHandling(server, cliCfg.ShutdownTimeout)
}

// loadConfiguration loads the config file and applies CLI overrides.
func loadConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.BindAddress != "" {
		cfg.Server.BindAddress = cliCfg.BindAddress
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildServer wires the store, integrity engine, resolvers, and both API
// surfaces onto one HTTP server.
func buildServer(cfg *config.Config, logger *slog.Logger) (*graphql.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db := store.NewDB()
	engine := integrity.NewEngine(db, logger)
	resolver := graphql.NewResolver(db, engine, logger)
	executor := graphql.NewExecutor(resolver, cfg.Server.MaxQueryDepth, logger)

	server, err := graphql.NewServer(cfg.Server, executor, logger, registry)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	if err := server.Setup(); err != nil {
		return nil, fmt.Errorf("setup server: %w", err)
	}

	rest.NewHandler(db, engine, logger).Register(server)
	return server, nil
}

// runWithSignalHandling starts the server and blocks until a shutdown
// signal arrives or the server fails.
func runWithSignalHandling(server *graphql.Server, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	ready := make(chan struct{})
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(signalCtx, ready)
	}()

	<-ready
	slog.Info("Service ready")

	select {
	case <-signalCtx.Done():
		slog.Info("Shutdown signal received")
		if err := server.Stop(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errChan

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}
