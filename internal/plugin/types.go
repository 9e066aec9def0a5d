package plugin

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// PluginType identifies how a plugin is provided.
type PluginType string

const (
	// PluginTypeBuiltin is compiled into the binary and resolved through a Registry.
	PluginTypeBuiltin PluginType = "builtin"

	// PluginTypeScript is a Go source file interpreted at load time.
	PluginTypeScript PluginType = "script"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	switch t {
	case PluginTypeBuiltin, PluginTypeScript:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t PluginType) String() string {
	return string(t)
}

// Phase names a lifecycle hook.
type Phase string

const (
	PhaseBeforeBuild Phase = "beforeBuild"
	PhaseAfterBuild  Phase = "afterBuild"
)

// PluginError represents an error that occurred within a plugin.
type PluginError struct {
	// Locator identifies which plugin failed.
	Locator string

	// Operation describes what the plugin was doing when it failed ("load", "beforeBuild", ...).
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.Locator, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a plugin error classified under CategoryPlugin.
func NewPluginError(locator, operation string, err error) error {
	return ferrors.WrapError(&PluginError{Locator: locator, Operation: operation, Err: err}, ferrors.CategoryPlugin, "plugin "+operation+" failed").
		Fatal().
		WithContext("plugin", locator).
		Build()
}
