package deps

import (
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// ExclusionSet is the read-only set of source paths the copy phase must not copy.
// A path is excluded when it equals an entry or is nested under one.
type ExclusionSet struct {
	entries sets.Set[string]
}

// NewExclusionSet builds the exclusion set for a build: the directory holding the
// content template (when one is configured), every tracked dependency and every
// discovered template file.
func NewExclusionSet(contentTemplatePath string, tracked []string, templates []string) *ExclusionSet {
	e := &ExclusionSet{entries: sets.New[string]()}
	if contentTemplatePath != "" {
		e.add(filepath.Dir(contentTemplatePath))
	}
	for _, p := range tracked {
		e.add(p)
	}
	for _, p := range templates {
		e.add(p)
	}
	return e
}

func (e *ExclusionSet) add(p string) {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	e.entries.Add(filepath.Clean(p))
}

// Excludes reports whether path is an entry or lies under one.
func (e *ExclusionSet) Excludes(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.Clean(path)
	for p := path; ; {
		if e.entries.Has(p) {
			return true
		}
		parent := filepath.Dir(p)
		if parent == p {
			return false
		}
		p = parent
	}
}

// Len returns the number of entries.
func (e *ExclusionSet) Len() int { return e.entries.Len() }

// Entries returns the sorted entries.
func (e *ExclusionSet) Entries() []string { return sets.Sorted(e.entries) }
