package splitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"nsplitter/pkg/models"
)

// SplitDirPath returns <parent>/<stem>.split.<ext> for path. The extension
// is taken without its dot and may be empty ("name.split.").
func SplitDirPath(path string) string {
	stem, ext := splitExt(filepath.Base(path))
	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.split.%s", stem, ext))
}

// splitExt separates name into stem and extension (without the dot).
// Leading dots belong to the stem, so ".bashrc" has no extension.
func splitExt(name string) (string, string) {
	lead := len(name) - len(strings.TrimLeft(name, "."))
	ext := filepath.Ext(name[lead:])
	if ext == "" {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), strings.TrimPrefix(ext, ".")
}

// FragmentName is the zero-based index, at least two digits wide.
func FragmentName(index int) string {
	return fmt.Sprintf("%02d", index)
}

// FragmentCount is ceil(size/maxSplitSize) in integer arithmetic; 0 for an empty file.
func FragmentCount(size, maxSplitSize int64) int {
	if size <= 0 || maxSplitSize <= 0 {
		return 0
	}
	n := size / maxSplitSize
	if size%maxSplitSize != 0 {
		n++
	}
	return int(n)
}

// Plan lists the fragments a file of the given size is cut into.
func Plan(size, maxSplitSize int64) []models.Fragment {
	count := FragmentCount(size, maxSplitSize)
	fragments := make([]models.Fragment, 0, count)

	var offset int64
	for i := 0; i < count; i++ {
		fragSize := min(maxSplitSize, size-offset)
		fragments = append(fragments, models.Fragment{
			Index:  i,
			Name:   FragmentName(i),
			Offset: offset,
			Size:   fragSize,
		})
		offset += fragSize
	}
	return fragments
}
