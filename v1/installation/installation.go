// Package installation manages the installation id: an opaque token
// generated on first start and reused for the lifetime of the deployment.
package installation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// DefaultPath is the file the id is persisted to when no path is configured.
const DefaultPath = "kouncil_installation_id.txt"

// ErrInstallationID is returned when the id cannot be read or persisted.
// It wraps cluster.ErrConfig since it aborts startup the same way.
var ErrInstallationID = fmt.Errorf("%w: installation id", cluster.ErrConfig)

// ID is the installation id.
type ID string

// Config holds the installation id settings.
type Config struct {
	Path string `mapstructure:"installationIdFile"`
}

// Resolve returns the id persisted at path, generating and persisting a
// new random one when the file is missing or empty.
func Resolve(path string) (ID, error) {
	if path == "" {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(raw)); id != "" {
			return ID(id), nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", fmt.Errorf("%w: failed to read %s: %v", ErrInstallationID, path, err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %v", ErrInstallationID, path, err)
	}
	return ID(id), nil
}
