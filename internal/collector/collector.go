package collector

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"nsplitter/internal/errs"
	"nsplitter/internal/utils"
)

// Collect returns the paths of regular files under directory whose name ends
// with extension. The match is a literal, case-sensitive suffix. Without
// recursive only the top level is listed. Order follows the traversal and
// callers must not rely on it.
func Collect(directory, extension string, recursive bool) ([]string, error) {
	info, err := os.Stat(directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewNotFoundError(directory, err)
		}
		return nil, errs.NewIOError(directory, 0, err)
	}
	if !info.IsDir() {
		return nil, errs.ErrNotFound.
			WithMessage("not a directory").
			WithDetail("path", directory)
	}

	if !recursive {
		return collectTopLevel(directory, extension)
	}
	return collectTree(directory, extension)
}

func collectTopLevel(directory, extension string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, errs.NewIOError(directory, 0, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(directory, e.Name())
		if matches(path, e, extension) {
			files = append(files, path)
		}
	}
	return files, nil
}

func collectTree(directory, extension string) ([]string, error) {
	files := make([]string, 0, 64)
	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == directory {
				return walkErr
			}
			// unreadable subtree
			log.Printf("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if matches(path, d, extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewIOError(directory, 0, err)
	}
	return files, nil
}

// matches accepts regular files and symlinks that resolve to regular files.
func matches(path string, d fs.DirEntry, extension string) bool {
	if d.IsDir() || !strings.HasSuffix(d.Name(), extension) {
		return false
	}
	if d.Type().IsRegular() {
		return true
	}
	return d.Type()&fs.ModeSymlink != 0 && utils.IsRegularFile(path)
}
