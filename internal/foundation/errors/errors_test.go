package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sitebuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "sitebuilder.yaml" {
			t.Errorf("expected context file=sitebuilder.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Wrapped chain", func(t *testing.T) {
		inner := RenderError("template failed").WithContext("path", "index.abell").Build()
		wrapped := fmt.Errorf("stage render_templates: %w", inner)

		classified, ok := AsClassified(wrapped)
		if !ok {
			t.Fatal("expected classified error through wrapping")
		}
		if classified.Category() != CategoryRender || !classified.IsFatal() {
			t.Errorf("expected fatal render error, got %s/%s", classified.Category(), classified.Severity())
		}
		if !HasCategory(wrapped, CategoryRender) {
			t.Error("HasCategory must see through wrapping")
		}
	})
}

func TestErrorString(t *testing.T) {
	cause := errors.New("permission denied")
	err := FileSystemError("copy failed").
		WithContext("path", "/src/a.css").
		WithContext("dest", "/dist/a.css").
		WithCause(cause).
		Build()

	want := "[filesystem] copy failed dest=/dist/a.css path=/src/a.css: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to wrap cause")
	}
}

func TestWithContextDoesNotMutate(t *testing.T) {
	base := PluginError("hook failed").Build()
	derived := base.WithContext("plugin", "sitemap")

	if _, ok := base.Context().Get("plugin"); ok {
		t.Error("WithContext must not mutate the receiver")
	}
	if name, _ := derived.Context().GetString("plugin"); name != "sitemap" {
		t.Errorf("expected plugin=sitemap, got %q", name)
	}
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{"a": 1, "shared": "left"}
	b := ErrorContext{"b": 2, "shared": "right"}

	merged := a.Merge(b)
	if merged["shared"] != "right" {
		t.Errorf("expected right-hand precedence, got %v", merged["shared"])
	}
	if len(merged) != 3 {
		t.Errorf("expected 3 keys, got %d", len(merged))
	}

	var empty ErrorContext
	if got := empty.Merge(b); got["b"] != 2 {
		t.Error("merging into nil context should return other")
	}
}
