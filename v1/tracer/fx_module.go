package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the *Tracer and flushes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return tracer.Config{ServiceName: "kouncil"} }),
//	    // a tracer.Logger must be provided as well
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer down on application stop so
// pending spans reach the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
