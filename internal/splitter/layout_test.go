package splitter

import (
	"math"
	"path/filepath"
	"testing"
)

func TestConstants(t *testing.T) {
	if MaxSplitSize != 4294901760 {
		t.Errorf("MaxSplitSize = %d, want 4294901760 (4 GiB - 64 KiB)", MaxSplitSize)
	}
	if DefaultBufferSize != 32768 {
		t.Errorf("DefaultBufferSize = %d, want 32768", DefaultBufferSize)
	}
}

func TestSplitDirPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "simple extension", path: filepath.Join("media", "movie.mp4"), want: filepath.Join("media", "movie.split.mp4")},
		{name: "double extension keeps last", path: filepath.Join("a", "backup.tar.gz"), want: filepath.Join("a", "backup.tar.split.gz")},
		{name: "no extension", path: filepath.Join("a", "disk"), want: filepath.Join("a", "disk.split.")},
		{name: "dotfile has no extension", path: filepath.Join("a", ".bashrc"), want: filepath.Join("a", ".bashrc.split.")},
		{name: "dotfile with extension", path: filepath.Join("a", ".cache.img"), want: filepath.Join("a", ".cache.split.img")},
		{name: "trailing dot", path: filepath.Join("a", "name."), want: filepath.Join("a", "name.split.")},
		{name: "bare file name", path: "game.iso", want: "game.split.iso"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitDirPath(tt.path); got != tt.want {
				t.Errorf("SplitDirPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFragmentName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "00"},
		{7, "07"},
		{42, "42"},
		{99, "99"},
		{100, "100"},
		{1234, "1234"},
	}

	for _, tt := range tests {
		if got := FragmentName(tt.index); got != tt.want {
			t.Errorf("FragmentName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestFragmentCount(t *testing.T) {
	tests := []struct {
		name string
		size int64
		max  int64
		want int
	}{
		{name: "empty file", size: 0, max: MaxSplitSize, want: 0},
		{name: "one byte", size: 1, max: MaxSplitSize, want: 1},
		{name: "exactly max", size: MaxSplitSize, max: MaxSplitSize, want: 1},
		{name: "max plus one", size: MaxSplitSize + 1, max: MaxSplitSize, want: 2},
		{name: "three max plus remainder", size: 3*MaxSplitSize + 500, max: MaxSplitSize, want: 4},
		{name: "exact multiple", size: 5 * MaxSplitSize, max: MaxSplitSize, want: 5},
		{name: "huge size does not overflow", size: math.MaxInt64, max: MaxSplitSize, want: int(math.MaxInt64/MaxSplitSize) + 1},
		{name: "small threshold", size: 25, max: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FragmentCount(tt.size, tt.max); got != tt.want {
				t.Errorf("FragmentCount(%d, %d) = %d, want %d", tt.size, tt.max, got, tt.want)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	sizes := []int64{0, 1, MaxSplitSize, MaxSplitSize + 1, 3*MaxSplitSize + 500}

	for _, size := range sizes {
		plan := Plan(size, MaxSplitSize)

		if len(plan) != FragmentCount(size, MaxSplitSize) {
			t.Fatalf("Plan(%d) has %d fragments, want %d", size, len(plan), FragmentCount(size, MaxSplitSize))
		}

		var sum int64
		for i, f := range plan {
			if f.Index != i || f.Name != FragmentName(i) {
				t.Errorf("Plan(%d)[%d] = %+v, wrong index or name", size, i, f)
			}
			if f.Offset != sum {
				t.Errorf("Plan(%d)[%d] offset = %d, want %d", size, i, f.Offset, sum)
			}
			if i < len(plan)-1 && f.Size != MaxSplitSize {
				t.Errorf("Plan(%d)[%d] size = %d, want %d", size, i, f.Size, MaxSplitSize)
			}
			if f.Size <= 0 || f.Size > MaxSplitSize {
				t.Errorf("Plan(%d)[%d] size = %d out of (0, max]", size, i, f.Size)
			}
			sum += f.Size
		}
		if sum != size {
			t.Errorf("Plan(%d) sums to %d", size, sum)
		}
	}
}

func TestPlan_LastFragment(t *testing.T) {
	plan := Plan(3*MaxSplitSize+500, MaxSplitSize)
	last := plan[len(plan)-1]

	if last.Size != 500 {
		t.Errorf("last fragment size = %d, want 500", last.Size)
	}
	if last.Offset != 3*MaxSplitSize {
		t.Errorf("last fragment offset = %d, want %d", last.Offset, 3*MaxSplitSize)
	}
}
