package cluster

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the *Registry built from a cluster.Input.
//
// Dependencies required by this module:
//   - A cluster.Input instance (Simple or Advanced)
//   - Optionally a cluster.Logger, a cluster.HostComparer and
//     ResolveOption values in the "cluster.resolve" group
var FXModule = fx.Module("cluster",
	fx.Provide(
		NewRegistryWithDI,
	),
	fx.Invoke(RegisterRegistryLifecycle),
)

// RegistryParams groups the dependencies needed to resolve the registry.
type RegistryParams struct {
	fx.In

	Input   Input
	Logger  Logger          `optional:"true"`
	Hosts   HostComparer    `optional:"true"`
	Options []ResolveOption `group:"cluster.resolve"`
}

// NewRegistryWithDI resolves the registry using dependency injection. A
// configuration error aborts application startup.
func NewRegistryWithDI(params RegistryParams) (*Registry, error) {
	var opts []ResolveOption
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Hosts != nil {
		opts = append(opts, WithHostComparer(params.Hosts))
	}
	opts = append(opts, params.Options...)
	return Resolve(params.Input, opts...)
}

// RegistryLifecycleParams groups the dependencies for lifecycle logging.
type RegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Registry  *Registry
	Logger    Logger `optional:"true"`
}

// RegisterRegistryLifecycle logs the resolved clusters once the application starts.
func RegisterRegistryLifecycle(params RegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Logger == nil {
				return nil
			}
			params.Logger.Info("Cluster registry ready", nil, map[string]interface{}{
				"clusters": params.Registry.ClusterIDs(),
			})
			return nil
		},
	})
}
