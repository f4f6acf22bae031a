package installation

import "go.uber.org/fx"

// FXModule provides the installation ID resolved from Config.
var FXModule = fx.Module("installation",
	fx.Provide(
		NewWithDI,
	),
)

// Params groups the dependencies needed to resolve the installation id.
type Params struct {
	fx.In

	Config Config
}

// NewWithDI resolves the installation id. A failure aborts startup.
func NewWithDI(params Params) (ID, error) {
	return Resolve(params.Config.Path)
}
