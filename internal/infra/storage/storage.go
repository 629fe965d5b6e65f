// Package storage provides sample directory resolution and exclusive
// sample file creation.
package storage

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Resolve ensures a writable sample directory exists and returns its
// path. The primary path is created if missing; if it cannot be created
// or is not writable, the fallback path is tried the same way. An empty
// fallback disables the second attempt.
func Resolve(primary, fallback string) (string, error) {
	if primary == "" {
		return "", errors.New("storage path not configured")
	}

	primaryErr := ensureWritable(primary)
	if primaryErr == nil {
		return primary, nil
	}

	if fallback == "" {
		return "", errors.Wrap(primaryErr, "storage directory unusable")
	}
	if err := ensureWritable(fallback); err != nil {
		return "", errors.Wrap(err, "fallback storage directory unusable")
	}
	return fallback, nil
}

// ensureWritable creates dir if needed and probes writability by creating
// and removing a scratch file. A plain Stat is not enough: read-only
// mounts report writable permission bits.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create storage directory")
	}
	probe, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return errors.Wrap(err, "storage directory not writable")
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Remove deletes the file at path. A missing file is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove sample file")
	}
	return nil
}
