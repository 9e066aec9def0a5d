// Package config loads and validates the sitebuilder build configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultConfigFile is the file name looked up when no --config flag is given.
const DefaultConfigFile = "sitebuilder.yaml"

// BuildConfig is the immutable configuration for one build run.
type BuildConfig struct {
	SourcePath          string      `yaml:"source"`
	DestinationPath     string      `yaml:"destination"`
	ContentTemplatePath string      `yaml:"content_template,omitempty"`
	ContentRoot         string      `yaml:"content_root,omitempty"` // every sub-directory holding index.md becomes a content item
	ContentDirectories  []string    `yaml:"content,omitempty"`
	Plugins             []PluginRef `yaml:"plugins,omitempty"`
	Logs                LogLevel    `yaml:"logs,omitempty"`
	// SanitizeContent filters rendered Markdown through an HTML sanitizer.
	SanitizeContent bool `yaml:"sanitize_content,omitempty"`
}

// PluginRef declares one plugin: a locator and optional plugin-specific options.
type PluginRef struct {
	Locator string         `yaml:"locator"`
	Options map[string]any `yaml:"options,omitempty"`
}

// UnmarshalYAML accepts both the mapping form and a bare locator string.
func (p *PluginRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Locator = node.Value
		return nil
	}
	type plain PluginRef
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = PluginRef(raw)
	return nil
}

// Overrides are command-line values that take precedence over the file.
// Relative paths resolve against the working directory.
type Overrides struct {
	Source      string
	Destination string
	Logs        string
}

// Load reads the configuration file at configPath, expands environment variables,
// applies defaults and resolves relative paths against the file's directory.
func Load(configPath string) (*BuildConfig, error) {
	return LoadWithOverrides(configPath, true, Overrides{})
}

// LoadWithOverrides is Load with command-line overrides applied before
// validation. When required is false a missing file yields the defaults,
// resolved against the working directory.
func LoadWithOverrides(configPath string, required bool, ov Overrides) (*BuildConfig, error) {
	cfg, baseDir, err := read(configPath, required)
	if err != nil {
		return nil, err
	}
	if err := ov.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(baseDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(configPath string, required bool) (*BuildConfig, string, error) {
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil {
		return nil, "", err
	}

	// #nosec G304 -- configPath is supplied by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !required {
			cfg, _ := Parse(nil)
			wd, err := os.Getwd()
			if err != nil {
				return nil, "", ferrors.WrapError(err, ferrors.CategoryConfig, "resolve working directory").Fatal().Build()
			}
			return cfg, wd, nil
		}
		if os.IsNotExist(err) {
			return nil, "", ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, "", ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(expandEnv(string(data))))
	if err != nil {
		return nil, "", ferrors.WrapError(err, ferrors.CategoryConfig, "malformed configuration").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	baseDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, "", ferrors.WrapError(err, ferrors.CategoryConfig, "resolve config directory").Fatal().Build()
	}
	return cfg, baseDir, nil
}

func (ov Overrides) apply(cfg *BuildConfig) error {
	for _, o := range []struct {
		val    string
		target *string
	}{
		{ov.Source, &cfg.SourcePath},
		{ov.Destination, &cfg.DestinationPath},
	} {
		if o.val == "" {
			continue
		}
		abs, err := filepath.Abs(o.val)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "resolve path override").
				WithContext("path", o.val).
				Fatal().
				Build()
		}
		*o.target = abs
	}
	if ov.Logs != "" {
		cfg.Logs = ParseLogLevel(ov.Logs)
	}
	return nil
}

// Parse decodes YAML configuration strictly (unknown keys are rejected) and applies defaults.
func Parse(data []byte) (*BuildConfig, error) {
	var cfg BuildConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *BuildConfig) ApplyDefaults() {
	if c.SourcePath == "" {
		c.SourcePath = "./src"
	}
	if c.DestinationPath == "" {
		c.DestinationPath = "./dist"
	}
	c.Logs = ParseLogLevel(string(c.Logs))
}

// Resolve turns every path absolute relative to baseDir, expands ContentRoot into
// ContentDirectories and validates the result.
func (c *BuildConfig) Resolve(baseDir string) error {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(baseDir, p)
	}

	c.SourcePath = abs(c.SourcePath)
	c.DestinationPath = abs(c.DestinationPath)
	if c.ContentTemplatePath != "" {
		c.ContentTemplatePath = abs(c.ContentTemplatePath)
	}
	for i, dir := range c.ContentDirectories {
		c.ContentDirectories[i] = abs(dir)
	}
	for i, ref := range c.Plugins {
		if isPathLocator(ref.Locator) {
			c.Plugins[i].Locator = abs(ref.Locator)
		}
	}
	if c.ContentRoot != "" {
		c.ContentRoot = abs(c.ContentRoot)
		items, err := discoverContentItems(c.ContentRoot)
		if err != nil {
			return err
		}
		c.ContentDirectories = append(c.ContentDirectories, items...)
	}

	return Validate(c)
}

// HasContentTemplate reports whether the content rendering phase should run:
// a content template is configured and exists on disk.
func (c *BuildConfig) HasContentTemplate() bool {
	if c.ContentTemplatePath == "" {
		return false
	}
	info, err := os.Stat(c.ContentTemplatePath)
	return err == nil && !info.IsDir()
}

// Snapshot returns a detached map view of the configuration handed to plugins.
// Mutating it has no effect on the build.
func (c *BuildConfig) Snapshot() map[string]any {
	plugins := make([]any, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		plugins = append(plugins, p.Locator)
	}
	content := make([]any, 0, len(c.ContentDirectories))
	for _, d := range c.ContentDirectories {
		content = append(content, d)
	}
	return map[string]any{
		"source":           c.SourcePath,
		"destination":      c.DestinationPath,
		"content_template": c.ContentTemplatePath,
		"content":          content,
		"plugins":          plugins,
		"logs":             string(c.Logs),
		"sanitize_content": c.SanitizeContent,
	}
}

// isPathLocator reports whether a plugin locator names a file rather than a registry entry.
func isPathLocator(locator string) bool {
	return !strings.Contains(locator, ":") || filepath.IsAbs(locator)
}

// discoverContentItems lists the immediate sub-directories of root that contain an
// index.md, in lexical order.
func discoverContentItems(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read content root").
			Fatal().
			WithContext("path", root).
			Build()
	}
	var items []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "index.md")); err == nil {
			items = append(items, dir)
		}
	}
	return items, nil
}

// Clone returns a deep copy of the configuration.
func (c *BuildConfig) Clone() *BuildConfig {
	out := *c
	out.ContentDirectories = append([]string(nil), c.ContentDirectories...)
	out.Plugins = make([]PluginRef, len(c.Plugins))
	for i, p := range c.Plugins {
		out.Plugins[i] = PluginRef{Locator: p.Locator, Options: maps.Clone(p.Options)}
	}
	return &out
}
