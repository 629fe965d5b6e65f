// Package statefile persists the recorder snapshot as an opaque
// key-value YAML document.
package statefile

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Save writes the snapshot blob to path. The blob is an opaque key-value
// map; the session controller defines its keys.
func Save(path string, blob map[string]any) error {
	data, err := yaml.Marshal(blob)
	if err != nil {
		return errors.Wrap(err, "marshal state blob")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "write state file")
	}
	return nil
}

// Load reads the snapshot blob from path.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read state file")
	}
	var blob map[string]any
	if err := yaml.Unmarshal(data, &blob); err != nil {
		return nil, errors.Wrap(err, "parse state file")
	}
	return blob, nil
}
