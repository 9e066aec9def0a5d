package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Init writes an example configuration file to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := BuildConfig{
		SourcePath:          "./src",
		DestinationPath:     "./dist",
		ContentTemplatePath: "./src/blog/[$path].abell",
		ContentRoot:         "./src/posts",
		Logs:                LogMinimum,
		Plugins: []PluginRef{
			{Locator: "builtin:sitemap", Options: map[string]any{"base_url": "https://example.com"}},
			{Locator: "builtin:search-index"},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal example config").Fatal().Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
