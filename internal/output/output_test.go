package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestReset(t *testing.T) {
	t.Run("missing destination", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "dist")
		require.NoError(t, Reset(dst))
		entries, err := os.ReadDir(dst)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("populated destination", func(t *testing.T) {
		dst := t.TempDir()
		write(t, dst, "old.html", "stale")
		write(t, dst, "nested/deeper/file.css", "stale")

		require.NoError(t, Reset(dst))
		entries, err := os.ReadDir(dst)
		require.NoError(t, err)
		assert.Empty(t, entries)

		// Idempotent.
		require.NoError(t, Reset(dst))
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty path", func(t *testing.T) {
		require.Error(t, Reset(""))
	})
}

type prefixExcluder []string

func (p prefixExcluder) Excludes(path string) bool {
	for _, e := range p {
		if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dist")

	write(t, src, "styles.css", "body{}")
	write(t, src, "img/logo.svg", "<svg/>")
	write(t, src, ".well-known/security.txt", "contact")
	write(t, src, "index.abell", "template")
	write(t, src, "components/nav.html", "partial")
	write(t, src, "components/footer.txt", "kept")
	write(t, src, "blog/[$path].abell", "dynamic")
	write(t, src, "blog/cover.png", "png")

	excl := prefixExcluder{
		filepath.Join(src, "index.abell"),
		filepath.Join(src, "components", "nav.html"),
		filepath.Join(src, "blog"),
	}

	stats, err := CopyTree(src, dst, excl)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, 3, stats.Skipped)

	for rel, content := range map[string]string{
		"styles.css":               "body{}",
		"img/logo.svg":             "<svg/>",
		".well-known/security.txt": "contact",
		"components/footer.txt":    "kept",
	} {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Equal(t, content, string(data), rel)
	}

	for _, rel := range []string{"index.abell", "components/nav.html", "blog"} {
		_, err := os.Stat(filepath.Join(dst, filepath.FromSlash(rel)))
		assert.True(t, os.IsNotExist(err), "%s should not be copied", rel)
	}
}

func TestCopyTree_PreservesMode(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	write(t, src, "run.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0o700))

	_, err := CopyTree(src, dst, nil)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestCopyTree_MissingSource(t *testing.T) {
	_, err := CopyTree(filepath.Join(t.TempDir(), "absent"), t.TempDir(), nil)
	require.Error(t, err)
}

func TestCopyTree_SkipsSymlinkedDirectories(t *testing.T) {
	src := t.TempDir()
	shared := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dist")

	write(t, shared, "widget.abell", "template")
	write(t, shared, "widget.css", "css")
	write(t, src, "real.txt", "real")
	write(t, src, "target.txt", "linked")
	require.NoError(t, os.Symlink(shared, filepath.Join(src, "shared")))
	require.NoError(t, os.Symlink(src, filepath.Join(src, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(src, "target.txt"), filepath.Join(src, "alias.txt")))

	stats, err := CopyTree(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 2, stats.Skipped)

	for _, rel := range []string{"shared", "loop"} {
		_, err := os.Lstat(filepath.Join(dst, rel))
		assert.True(t, os.IsNotExist(err), "%s should not be copied", rel)
	}
	data, err := os.ReadFile(filepath.Join(dst, "alias.txt"))
	require.NoError(t, err)
	assert.Equal(t, "linked", string(data))
}
