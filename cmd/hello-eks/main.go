// Package main is the entry point for the hello-eks server
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"hello-eks/internal/config"
	"hello-eks/internal/logging"
	"hello-eks/internal/server"
	"hello-eks/internal/telemetry"
	"hello-eks/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Cluster log collectors read stdout
	logging.SetOutput(os.Stdout)

	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found or error loading it: %v", err)
	}

	versionInfo := version.Get()

	if isVersionFlag(args) {
		fmt.Print(versionInfo.String())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if isDevelopment() {
		if err := logging.Initialize(cfg.LogDir); err != nil {
			logging.Warning("Failed to initialize file logging: %v", err)
		} else {
			defer logging.Close() //nolint:errcheck // process is exiting

			if cfg.LogRotateSchedule != "" {
				rotator, err := logging.StartRotation(cfg.LogDir, cfg.LogRotateSchedule)
				if err != nil {
					logging.Warning("Log rotation disabled: %v", err)
				} else {
					defer rotator.Stop()
				}
			}
		}
	}

	if cfg.TelemetryEnabled {
		ctx := context.Background()
		shutdown, err := telemetry.InitializeFromEnv(ctx, versionInfo.Version)
		if err != nil {
			logging.Warning("Failed to initialize telemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					logging.Error("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	srv, err := server.New(cfg, versionInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		return 1
	}
	defer srv.Shutdown()

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}

func isVersionFlag(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "--version", "-version", "version":
		return true
	}
	return false
}

func isDevelopment() bool {
	return os.Getenv("HELLO_ENV") == "development" || os.Getenv("DEBUG") == "true"
}
