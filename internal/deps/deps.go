// Package deps records the source files read while rendering and derives the set
// of paths the copy phase must skip.
package deps

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Tracker accumulates files reported as rendering dependencies during one build.
// It is not safe for concurrent use; builds are sequential.
type Tracker struct {
	seen sets.Set[string]
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: sets.New[string]()}
}

// Record adds dependency paths. Relative paths are made absolute against the working
// directory; empty entries are ignored.
func (t *Tracker) Record(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		t.seen.Add(filepath.Clean(p))
	}
}

// Len returns the number of distinct recorded paths.
func (t *Tracker) Len() int { return t.seen.Len() }

// All returns every recorded path, sorted.
func (t *Tracker) All() []string { return sets.Sorted(t.seen) }

// Within returns the recorded paths contained in root, sorted. Containment is a
// path test, not a string prefix test: /site/src2/x is not within /site/src.
func (t *Tracker) Within(root string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range t.All() {
		if Contains(absRoot, p) {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether p equals root or is nested below it. Both paths must be
// absolute.
func Contains(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
