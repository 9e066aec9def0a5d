// Package output manages the destination tree: resetting it before a build and
// copying untouched source assets into it.
package output

import (
	"os"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Reset deletes dir recursively when it exists and recreates it empty. A missing
// directory is not an error. Any prior output is destroyed unconditionally.
func Reset(dir string) error {
	if dir == "" {
		return ferrors.ConfigError("destination path is empty").Build()
	}
	if err := os.RemoveAll(dir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove destination").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create destination").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	return nil
}
