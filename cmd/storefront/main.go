// Command storefront runs the order placement and fulfilment API.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/di"
)

// stopTimeout bounds the whole shutdown; SHUTDOWN_TIMEOUT applies inside it.
const stopTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.StopTimeout(stopTimeout),
		di.Module(),
	)

	run(ctx, app)
}
