package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the metrics package.
// It provides the Metrics instance and runs the Prometheus HTTP server for
// the lifetime of the application.
//
// Usage:
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{
//	            Address:                 ":9090",
//	            EnableDefaultCollectors: true,
//	            ServiceName:             "kouncil",
//	        }
//	    }),
//	)
//
// A metrics.Logger is optional; without one the server runs silently.
var FXModule = fx.Module("metrics",
	fx.Provide(NewMetrics),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the metrics HTTP server in the background
// on start and shuts it down gracefully on stop.
func RegisterMetricsLifecycle(params LifecycleParams) {
	m, log := params.Metrics, params.Logger
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if log != nil {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})
			}
			go func() {
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if log != nil {
				log.Info("Shutting down Prometheus metrics server", nil, nil)
			}
			return m.Server.Shutdown(ctx)
		},
	})
}
