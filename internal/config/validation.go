package config

import (
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks a resolved configuration. Paths must already be absolute.
func Validate(c *BuildConfig) error {
	if err := validateSource(c.SourcePath); err != nil {
		return err
	}
	if err := validateDestination(c.SourcePath, c.DestinationPath); err != nil {
		return err
	}
	for i, ref := range c.Plugins {
		if strings.TrimSpace(ref.Locator) == "" {
			return ferrors.ValidationError("plugin locator is empty").
				WithContext("index", i).
				Build()
		}
	}
	return nil
}

func validateSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "source directory is not readable").
			Fatal().
			WithContext("path", src).
			Build()
	}
	if !info.IsDir() {
		return ferrors.ConfigError("source path is not a directory").
			WithContext("path", src).
			Build()
	}
	return nil
}

// validateDestination rejects destinations that overlap the source tree: resetting
// such a destination would delete sources, or copying would recurse into itself.
func validateDestination(src, dst string) error {
	if dst == "" {
		return ferrors.ConfigError("destination path is required").Build()
	}
	if within(src, dst) || within(dst, src) {
		return ferrors.ConfigError("destination must not overlap the source directory").
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}
	return nil
}

// within reports whether p equals root or is nested below it.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
