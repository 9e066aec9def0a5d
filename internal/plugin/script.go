package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Script hook function names. A script defines either or both as
//
//	func BeforeBuild(config map[string]any) error
//
// the error result and the parameter are optional.
const (
	scriptBeforeBuild = "BeforeBuild"
	scriptAfterBuild  = "AfterBuild"
)

// ScriptPlugin is a plugin backed by an interpreted Go source file.
type ScriptPlugin struct {
	path   string
	before reflect.Value
	after  reflect.Value
}

// LoadScript evaluates the Go file at path and binds its hook functions.
func LoadScript(path string) (*ScriptPlugin, error) {
	// #nosec G304 -- plugin paths come from the build configuration.
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("interpret %s: %w", path, err)
	}

	sp := &ScriptPlugin{path: path}
	sp.before = lookupHook(i, scriptBeforeBuild)
	sp.after = lookupHook(i, scriptAfterBuild)
	if !sp.before.IsValid() && !sp.after.IsValid() {
		return nil, fmt.Errorf("%s defines neither %s nor %s", path, scriptBeforeBuild, scriptAfterBuild)
	}
	return sp, nil
}

func lookupHook(i *interp.Interpreter, name string) reflect.Value {
	v, err := i.Eval(name)
	if err != nil || !v.IsValid() || v.Kind() != reflect.Func {
		return reflect.Value{}
	}
	return v
}

// Metadata names the plugin after its file.
func (s *ScriptPlugin) Metadata() PluginMetadata {
	return PluginMetadata{
		Name:        strings.TrimSuffix(filepath.Base(s.path), ".go"),
		Version:     "script",
		Type:        PluginTypeScript,
		Description: "interpreted plugin " + s.path,
	}
}

// HasHook reports whether the script defines the hook for phase.
func (s *ScriptPlugin) HasHook(phase Phase) bool {
	switch phase {
	case PhaseBeforeBuild:
		return s.before.IsValid()
	case PhaseAfterBuild:
		return s.after.IsValid()
	}
	return false
}

// BeforeBuild invokes the script's BeforeBuild function when defined.
func (s *ScriptPlugin) BeforeBuild(_ context.Context, pc *PluginContext) error {
	return callHook(s.before, pc)
}

// AfterBuild invokes the script's AfterBuild function when defined.
func (s *ScriptPlugin) AfterBuild(_ context.Context, pc *PluginContext) error {
	return callHook(s.after, pc)
}

func callHook(fn reflect.Value, pc *PluginContext) (err error) {
	if !fn.IsValid() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var args []reflect.Value
	switch fn.Type().NumIn() {
	case 0:
	case 1:
		snapshot := pc.Config.Snapshot()
		snapshot["build_id"] = pc.BuildID
		snapshot["options"] = pc.Options
		arg := reflect.ValueOf(snapshot)
		if !arg.Type().AssignableTo(fn.Type().In(0)) {
			return fmt.Errorf("hook parameter must be map[string]any, got %s", fn.Type().In(0))
		}
		args = []reflect.Value{arg}
	default:
		return fmt.Errorf("hook takes at most one parameter, got %d", fn.Type().NumIn())
	}

	results := fn.Call(args)
	if len(results) == 0 {
		return nil
	}
	last := results[len(results)-1]
	if last.Kind() == reflect.Interface && !last.IsNil() {
		if e, ok := last.Interface().(error); ok {
			return e
		}
	}
	return nil
}
