package output

import (
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Excluder decides whether a source path is skipped by CopyTree.
type Excluder interface {
	Excludes(path string) bool
}

// CopyStats summarizes a CopyTree run.
type CopyStats struct {
	Files   int
	Skipped int
}

// CopyTree recursively copies src into dst, preserving relative structure and file
// modes. Files and directories for which excl reports true are skipped; excluded
// directories are not descended into. Symlinked files are copied by content;
// symlinked directories are skipped. The first failure aborts the copy.
func CopyTree(src, dst string, excl Excluder) (CopyStats, error) {
	var stats CopyStats
	err := copyDir(src, dst, excl, &stats)
	return stats, err
}

func copyDir(src, dst string, excl Excluder, stats *CopyStats) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fsError(err, "stat source directory", src)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return fsError(err, "create destination directory", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fsError(err, "read source directory", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if excl != nil && excl.Excludes(srcPath) {
			stats.Skipped++
			continue
		}

		mode := entry.Type()
		if mode&os.ModeSymlink != 0 {
			target, err := os.Stat(srcPath)
			if err != nil {
				return fsError(err, "resolve symlink", srcPath)
			}
			// Template discovery does not descend into linked directories, so
			// neither does the copy.
			if target.IsDir() {
				stats.Skipped++
				continue
			}
			mode = target.Mode().Type()
		}

		if mode.IsDir() {
			if err := copyDir(srcPath, dstPath, excl, stats); err != nil {
				return err
			}
			continue
		}
		if !mode.IsRegular() {
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
		stats.Files++
	}
	return nil
}

// copyFile copies a single file from src to dst, following symlinks.
func copyFile(src, dst string) error {
	// #nosec G304 -- src comes from walking the configured source tree.
	srcFile, err := os.Open(src)
	if err != nil {
		return fsError(err, "open source file", src)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fsError(err, "stat source file", src)
	}
	// #nosec G304 -- dst is derived from the destination root.
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fsError(err, "create destination file", dst)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fsError(err, "copy file contents", src)
	}
	if err := dstFile.Close(); err != nil {
		return fsError(err, "close destination file", dst)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
