// Command notifydemo drives the notify core from the terminal. It prints
// what each renderer shows, plays scenario files and serves an inspection
// endpoint for a live session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "notifydemo:", err)
		stop()
		os.Exit(1)
	}
}
