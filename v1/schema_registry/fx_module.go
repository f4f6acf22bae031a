package schema_registry

import (
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// FXModule provides a *Factory that builds one registry client per
// configured cluster.
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(func() schema_registry.FactoryConfig {
//	        return schema_registry.FactoryConfig{Timeout: 10 * time.Second}
//	    }),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewFactoryWithDI,
	),
)

// FactoryConfig holds settings shared by every cluster's registry client.
type FactoryConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Factory creates registry clients from cluster configuration.
type Factory struct {
	timeout time.Duration
}

// NewFactory creates a Factory.
func NewFactory(cfg FactoryConfig) *Factory {
	return &Factory{timeout: cfg.Timeout}
}

// ForCluster creates the client for one cluster's schema registry.
func (f *Factory) ForCluster(sr cluster.SchemaRegistryConfig) (*Client, error) {
	return NewClient(ConfigFromCluster(sr, f.timeout))
}

// FactoryParams groups the dependencies needed to create the factory.
type FactoryParams struct {
	fx.In

	Config FactoryConfig `optional:"true"`
}

// NewFactoryWithDI creates the factory using dependency injection.
func NewFactoryWithDI(params FactoryParams) *Factory {
	return NewFactory(params.Config)
}
