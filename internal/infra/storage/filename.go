package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// unsafeRunes are replaced in formatted timestamps so the result is a
// legal file name on FAT and sandboxed storage.
const unsafeRunes = `\*|":<>/? `

// CreateUnique creates a new, exclusively owned file in dir and returns
// it open for writing. The name embeds now formatted with layout (a Go
// reference layout), sanitized, as prefix-stamp[-N]suffix. Candidates are
// retried with an increasing counter until O_EXCL creation succeeds, so
// two calls within the same timestamp granularity still produce distinct
// files.
func CreateUnique(dir, prefix, suffix, layout string, now time.Time) (*os.File, error) {
	stamp := SanitizeName(now.Format(layout))

	base := stamp
	if prefix != "" {
		base = prefix + "-" + stamp
	}

	for n := 0; ; n++ {
		name := base + suffix
		if n > 0 {
			name = base + "-" + strconv.Itoa(n) + suffix
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(err, "create sample file")
		}
	}
}

// SanitizeName replaces filesystem-unsafe characters in name with
// underscores.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeRunes, r) {
			return '_'
		}
		return r
	}, name)
}
