// main executable.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bluenviron/mj2wrap/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := core.Run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}
