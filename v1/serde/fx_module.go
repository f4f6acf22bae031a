package serde

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// FXModule provides the formatter registry, the per-cluster schema
// resolvers and the Deserializer.
//
// The application must provide a *cluster.Registry and a SourceFactory.
// Options may be contributed to the "serde.options" group.
var FXModule = fx.Module("serde",
	fx.Provide(
		DefaultFormatterRegistry,
		NewClusterSchemasWithDI,
		NewDeserializerWithDI,
	),
	fx.Invoke(RegisterFormatterValidation),
)

// ClusterSchemasParams groups the dependencies needed to build ClusterSchemas.
type ClusterSchemasParams struct {
	fx.In

	Registry   *cluster.Registry
	Formatters *FormatterRegistry
	Sources    SourceFactory
	Logger     Logger   `optional:"true"`
	Options    []Option `group:"serde.options"`
}

// NewClusterSchemasWithDI builds ClusterSchemas using dependency injection.
func NewClusterSchemasWithDI(params ClusterSchemasParams) (*ClusterSchemas, error) {
	opts := params.Options
	if params.Logger != nil {
		opts = append([]Option{WithLogger(params.Logger)}, opts...)
	}
	return NewClusterSchemas(params.Registry, params.Formatters, params.Sources, opts...)
}

// DeserializerParams groups the dependencies needed to build a Deserializer.
type DeserializerParams struct {
	fx.In

	Schemas *ClusterSchemas
	Logger  Logger   `optional:"true"`
	Options []Option `group:"serde.options"`
}

// NewDeserializerWithDI builds a Deserializer using dependency injection.
func NewDeserializerWithDI(params DeserializerParams) *Deserializer {
	opts := params.Options
	if params.Logger != nil {
		opts = append([]Option{WithLogger(params.Logger)}, opts...)
	}
	return NewDeserializer(params.Schemas, opts...)
}

// RegisterFormatterValidation fails startup when a format has no formatter.
func RegisterFormatterValidation(lc fx.Lifecycle, formatters *FormatterRegistry) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return formatters.Validate()
		},
	})
}
