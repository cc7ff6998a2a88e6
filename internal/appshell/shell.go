// Package appshell runs a command under a signal-aware context and exits
// with its status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main runs run with a context cancelled by SIGINT or SIGTERM. A second
// signal kills the process with status 130 without waiting for cleanup.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		<-sigs
		os.Exit(130)
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}

	signal.Stop(sigs)
	cancel()
	os.Exit(code)
}
