// Package main provides the entry point for the conductor CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrz1836/conductor/internal/cli"
)

// Build information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2026-01-01"
var (
	version = "dev"     //nolint:gochecknoglobals // Set via ldflags
	commit  = "none"    //nolint:gochecknoglobals // Set via ldflags
	date    = "unknown" //nolint:gochecknoglobals // Set via ldflags
)

func main() {
	// SIGINT/SIGTERM cancel the context so in-flight runs drain and
	// archive as aborted instead of being killed mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()
	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
