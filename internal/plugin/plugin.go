// Package plugin provides the build lifecycle plugin system.
//
// A plugin is resolved once per build from a locator: either a built-in registered
// in a Registry ("builtin:sitemap") or a Go source file interpreted at load time.
// Plugins opt into lifecycle phases by implementing BeforeBuilder and/or
// AfterBuilder; the Runner invokes them strictly in declaration order.
package plugin

import (
	"context"
	"fmt"
)

// Plugin is the minimal contract every plugin satisfies.
type Plugin interface {
	// Metadata returns the plugin's identity.
	Metadata() PluginMetadata
}

// BeforeBuilder is implemented by plugins that run before any rendering.
type BeforeBuilder interface {
	BeforeBuild(ctx context.Context, pc *PluginContext) error
}

// AfterBuilder is implemented by plugins that run after the copy phase.
type AfterBuilder interface {
	AfterBuild(ctx context.Context, pc *PluginContext) error
}

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "sitemap").
	Name string

	// Version is the semantic version (e.g., "v1.0.0").
	Version string

	// Type identifies how the plugin was provided.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// Hook is a lifecycle callback.
type Hook func(context.Context, *PluginContext) error

// hookFor returns the callback a plugin exposes for phase, or nil.
func hookFor(p Plugin, phase Phase) Hook {
	switch phase {
	case PhaseBeforeBuild:
		if h, ok := p.(BeforeBuilder); ok {
			return h.BeforeBuild
		}
	case PhaseAfterBuild:
		if h, ok := p.(AfterBuilder); ok {
			return h.AfterBuild
		}
	}
	return nil
}
