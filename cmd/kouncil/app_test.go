package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kouncil/v1/config"
)

func TestOptionsGraphIsComplete(t *testing.T) {
	cfg, err := config.Load([]string{
		"--bootstrapServers=localhost:9092",
		"--kouncil.installationIdFile=" + filepath.Join(t.TempDir(), "id.txt"),
		"--metrics.address=127.0.0.1:0",
	})
	require.NoError(t, err)

	require.NoError(t, fx.ValidateApp(options(cfg)))
}
