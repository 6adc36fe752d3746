package models

import "time"

// Fragment describes one numbered output file inside a split directory.
type Fragment struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Progress is reported once per completed fragment.
type Progress struct {
	Elapsed   time.Duration
	Fragment  int // 1-based
	Fragments int
	Written   int64
	Total     int64
	Name      string
}

// Ratio returns Written/Total, treating an empty file as complete.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Written) / float64(p.Total)
}

// Done reports whether this is the final report of a job.
func (p Progress) Done() bool {
	return p.Written >= p.Total
}

type ProgressFunc func(Progress)

// SplitRecord is the journal entry for a file that was split successfully.
type SplitRecord struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	SplitDir  string    `json:"split_dir"`
	Fragments int       `json:"fragments"`
	SplitAt   time.Time `json:"split_at"`
}

type Journal struct {
	Version   string                 `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Files     map[string]SplitRecord `json:"files"`
}

type FileEvent struct {
	Path      string
	Operation string // CREATE, MODIFY, SCAN
	Timestamp time.Time
}

// FileFailure keeps the error of one file in a batch.
type FileFailure struct {
	Path string
	Err  error
}

type BatchStats struct {
	TotalFiles   int
	SplitFiles   int
	SkippedFiles int
	FailedFiles  int
	Fragments    int
	Bytes        int64
	Failures     []FileFailure
}
