package splitter

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30

	// MaxSplitSize keeps every fragment under the FAT32 4 GiB file size ceiling.
	MaxSplitSize int64 = 4*GiB - 64*KiB

	DefaultBufferSize = 32 * KiB
)
