package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Load reads a classic application manifest. A JSON document without a
// startup_app block is rejected, which lets callers fall back when a
// random JSON file is requested through the manifest middleware.
func Load(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.WrapError(types.ErrManifestNotFound, path)
		}
		return nil, types.WrapError(types.ErrInvalidManifest, fmt.Sprintf("reading %s: %v", path, err))
	}

	var m types.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.WrapError(types.ErrInvalidManifest, fmt.Sprintf("parsing %s: %v", path, err))
	}

	if m.StartupApp == nil {
		return nil, types.WrapError(types.ErrNotAppManifest, path)
	}

	return &m, nil
}

// Save writes a manifest document as indented JSON, creating parent
// directories as needed
func Save(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return types.WrapError(err, fmt.Sprintf("encoding %s", path))
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return types.WrapError(err, fmt.Sprintf("creating %s", filepath.Dir(path)))
	}

	return os.WriteFile(path, data, 0644)
}
