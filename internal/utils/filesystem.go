package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if _, err := filepath.Abs(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	return nil
}

// EnsureDirectoryExists creates dirPath and its parents; an existing directory is not an error.
func EnsureDirectoryExists(dirPath string) error {
	if err := ValidatePath(dirPath); err != nil {
		return err
	}

	return os.MkdirAll(dirPath, 0755)
}

func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsRegularFile follows symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
