package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"nsplitter/internal/config"
	"nsplitter/pkg/models"
)

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1_000"},
		{8000, "8_000"},
		{123456, "123_456"},
		{1234567, "1_234_567"},
		{4294901760, "4_294_901_760"},
		{-1234, "-1_234"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := groupDigits(tt.in); got != tt.want {
				t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	report := newProgressReporter(config.ProgressLine, &buf)
	if report == nil {
		t.Fatal("line reporter is nil")
	}

	report(models.Progress{
		Elapsed:   3661 * time.Second,
		Fragment:  1,
		Fragments: 8,
		Written:   1000,
		Total:     8000,
		Name:      "movie.mp4",
	})
	want := "[01:01:01] [1/8] [12.50%] 1_000/8_000 bytes | movie.mp4\r"
	if got := buf.String(); got != want {
		t.Errorf("intermediate line = %q, want %q", got, want)
	}

	buf.Reset()
	report(models.Progress{
		Elapsed:   2 * time.Second,
		Fragment:  8,
		Fragments: 8,
		Written:   8000,
		Total:     8000,
		Name:      "movie.mp4",
	})
	want = "[00:00:02] [8/8] [100.00%] 8_000/8_000 bytes | movie.mp4\n"
	if got := buf.String(); got != want {
		t.Errorf("final line = %q, want %q", got, want)
	}
}

func TestNoneReporter(t *testing.T) {
	if report := newProgressReporter(config.ProgressNone, &bytes.Buffer{}); report != nil {
		t.Error("none mode should not report progress")
	}
}

func TestBarReporterWritesOutput(t *testing.T) {
	var buf bytes.Buffer
	report := newProgressReporter(config.ProgressBar, &buf)

	report(models.Progress{Fragment: 1, Fragments: 2, Written: 500, Total: 1000, Name: "a.bin"})
	report(models.Progress{Fragment: 2, Fragments: 2, Written: 1000, Total: 1000, Name: "a.bin"})

	if !strings.Contains(buf.String(), "Splitting a.bin") {
		t.Errorf("bar output missing description: %q", buf.String())
	}
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	printPlan(&buf, "/media/movie.mp4", 2500, 1000)

	out := buf.String()
	for _, want := range []string{
		"/media/movie.mp4 (2_500 bytes) -> /media/movie.split.mp4 [3 fragments]",
		"  00  1_000 bytes @ 0\n",
		"  01  1_000 bytes @ 1_000\n",
		"  02  500 bytes @ 2_000\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &models.BatchStats{
		TotalFiles:   4,
		SplitFiles:   2,
		SkippedFiles: 1,
		FailedFiles:  1,
		Fragments:    5,
		Bytes:        4500,
		Failures:     []models.FileFailure{{Path: "/x/bad.mp4", Err: errors.New("boom")}},
	})

	out := buf.String()
	if !strings.HasPrefix(out, "Split 2/4 files into 5 fragments (4_500 bytes) (1 skipped) (1 failed)\n") {
		t.Errorf("unexpected summary line: %q", out)
	}
	if !strings.Contains(out, "FAIL /x/bad.mp4: boom") {
		t.Errorf("summary missing failure: %q", out)
	}
}
