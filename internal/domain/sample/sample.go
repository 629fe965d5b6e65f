// Package sample provides the recorded sample domain entity.
package sample

import (
	"os"
	"time"
)

// Persisted snapshot keys.
const (
	PathKey   = "sample_path"
	LengthKey = "sample_length"
)

// Sample represents the on-storage artifact of one recording session.
// Length accumulates completed recording segments only; the currently
// open segment is accounted for by the session controller at pause or
// stop time.
type Sample struct {
	Path   string
	Length time.Duration
}

// Exists reports whether the backing file is present on storage.
func (s Sample) Exists() bool {
	if s.Path == "" {
		return false
	}
	_, err := os.Stat(s.Path)
	return err == nil
}

// Seconds returns the accumulated length in whole seconds.
func (s Sample) Seconds() int {
	return int(s.Length / time.Second)
}

// Snapshot is the persisted form of a sample reference: the file path and
// the accumulated length in milliseconds. The on-disk representation is an
// opaque key-value document, not a binary layout.
type Snapshot struct {
	SamplePath         string `mapstructure:"sample_path" yaml:"sample_path"`
	SampleLengthMillis int64  `mapstructure:"sample_length" yaml:"sample_length"`
}
