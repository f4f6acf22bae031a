package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
	"github.com/Aleph-Alpha/kouncil/v1/config"
	"github.com/Aleph-Alpha/kouncil/v1/installation"
	"github.com/Aleph-Alpha/kouncil/v1/kafka"
	"github.com/Aleph-Alpha/kouncil/v1/logger"
	"github.com/Aleph-Alpha/kouncil/v1/metrics"
	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
	"github.com/Aleph-Alpha/kouncil/v1/serde"
	"github.com/Aleph-Alpha/kouncil/v1/tracer"
)

// options assembles the application from the component modules.
func options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			func(c *config.Config) logger.Config { return c.Logger },
			func(c *config.Config) metrics.Config { return c.Metrics },
			func(c *config.Config) tracer.Config { return c.Tracer },
			func(c *config.Config) installation.Config { return c.Kouncil.Config },
			func(c *config.Config) schema_registry.FactoryConfig { return c.SchemaRegistry },
			func(c *config.Config) cluster.Input { return c.ClusterInput() },
			fx.Annotate(
				func(c *config.Config) []cluster.ResolveOption { return c.ResolveOptions() },
				fx.ResultTags(`group:"cluster.resolve,flatten"`),
			),
		),

		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		logger.FXModule,
		fx.Provide(
			func(l logger.Logger) cluster.Logger { return l },
			func(l logger.Logger) serde.Logger { return l },
			func(l logger.Logger) kafka.Logger { return l },
			func(l logger.Logger) metrics.Logger { return l },
			func(l logger.Logger) tracer.Logger { return l },
		),

		metrics.FXModule,
		tracer.FXModule,
		installation.FXModule,

		fx.Provide(newHostComparer),
		cluster.FXModule,

		schema_registry.FXModule,
		fx.Provide(
			newSourceFactory,
			fx.Annotate(
				newSerdeOptions,
				fx.ResultTags(`group:"serde.options,flatten"`),
			),
		),
		serde.FXModule,
		kafka.FXModule,

		fx.Invoke(logStartup),
	)
}

func newHostComparer(l cluster.Logger, m *metrics.Metrics) cluster.HostComparer {
	return cluster.NewHostIdentity(
		cluster.WithHostLogger(l),
		cluster.WithResolutionFailures(m.HostResolutionFailures()),
	)
}

func newSourceFactory(f *schema_registry.Factory) serde.SourceFactory {
	return func(sr cluster.SchemaRegistryConfig) (serde.SchemaSource, error) {
		c, err := f.ForCluster(sr)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func newSerdeOptions(m *metrics.Metrics) []serde.Option {
	return []serde.Option{
		serde.WithResolutionCounter(m.FormatterResolutions()),
		serde.WithDecodeErrorCounter(m.DecodeErrors()),
	}
}

// logStartup forces construction of the startup-validated components and
// logs the effective configuration.
func logStartup(
	log logger.Logger,
	cfg *config.Config,
	id installation.ID,
	registry *cluster.Registry,
	_ *serde.Deserializer,
	_ *kafka.Clients,
) {
	log.Info("Kouncil started", nil, map[string]interface{}{
		"installationId": string(id),
		"advanced":       cfg.Advanced(),
		"clusters":       registry.ClusterIDs(),
	})
	log.Debug("Effective configuration", nil, map[string]interface{}{
		"config": cfg.String(),
	})
}
