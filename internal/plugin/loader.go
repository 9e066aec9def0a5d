package plugin

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// BuiltinPrefix selects a plugin from the Registry.
const BuiltinPrefix = "builtin:"

// Loader resolves plugin locators and caches the instances, so loading the same
// locator twice returns the same plugin. The first load's options win.
type Loader struct {
	registry *Registry

	mu    sync.Mutex
	cache map[string]Plugin
	files map[string]struct{}
}

// NewLoader creates a loader resolving built-ins through registry (the default
// registry when nil).
func NewLoader(registry *Registry) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Loader{
		registry: registry,
		cache:    make(map[string]Plugin),
		files:    make(map[string]struct{}),
	}
}

// Load resolves ref, returning the cached instance when the locator was seen before.
func (l *Loader) Load(ref config.PluginRef) (Plugin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.cache[ref.Locator]; ok {
		return p, nil
	}

	p, err := l.resolve(ref)
	if err != nil {
		return nil, NewPluginError(ref.Locator, "load", err)
	}
	if err := p.Metadata().Validate(); err != nil {
		return nil, NewPluginError(ref.Locator, "load", err)
	}
	l.cache[ref.Locator] = p
	return p, nil
}

func (l *Loader) resolve(ref config.PluginRef) (Plugin, error) {
	switch {
	case strings.HasPrefix(ref.Locator, BuiltinPrefix):
		name := strings.TrimPrefix(ref.Locator, BuiltinPrefix)
		factory, err := l.registry.Get(name)
		if err != nil {
			return nil, err
		}
		return factory(ref.Options)
	case filepath.Ext(ref.Locator) == ".go":
		p, err := LoadScript(ref.Locator)
		if err != nil {
			return nil, err
		}
		abs, absErr := filepath.Abs(ref.Locator)
		if absErr == nil {
			l.files[abs] = struct{}{}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported plugin locator %q (want %s<name> or a .go file)", ref.Locator, BuiltinPrefix)
	}
}

// Files returns the absolute paths of every plugin source file loaded so far, sorted.
// Plugin sources living inside the site's source tree are build inputs, not assets.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.files))
	for f := range l.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
