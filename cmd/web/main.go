// cmd/web/main.go
//
// inventario – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load env vars (system-wide file → .env fallback).
//
//  2. Parse the command line.  `serve` (default) runs the service;
//     `check-config` prints the resolved configuration and exits.
//
//  3. Install the error-report theme on stderr.
//
//  4. Run until SIGINT or SIGTERM, then shut down gracefully.
//
// Any error that reaches main is rendered as a report and the process
// exits with status 1.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/yanizio/inventario/internal/app"
	"github.com/yanizio/inventario/internal/report"
)

const serverEnvPath = "/usr/local/etc/inventario/inventario.env"

// loadEnv prefers the system-wide env file; on dev it falls back to .env.
// Variables already set in the process environment win.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	cli := kingpin.New("inventario", "Inventario API service.")
	serve := cli.Command("serve", "Run the HTTP service.").Default()
	check := cli.Command("check-config", "Load, validate, and print the configuration with secrets masked.")

	cmd := kingpin.MustParse(cli.Parse(os.Args[1:]))

	if err := report.Install(os.Stderr); err != nil {
		report.Exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case serve.FullCommand():
		err = app.Run(ctx, app.Options{TTY: runningInTTY()})
	case check.FullCommand():
		err = app.CheckConfig(ctx, os.Stdout)
	}
	if err != nil {
		stop()
		report.Exit(err)
	}
}
