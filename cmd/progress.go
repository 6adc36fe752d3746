package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"nsplitter/internal/config"
	"nsplitter/internal/utils"
	"nsplitter/pkg/models"
)

// newProgressReporter picks how per-fragment progress is rendered.
func newProgressReporter(mode string, w io.Writer) models.ProgressFunc {
	switch mode {
	case config.ProgressBar:
		r := &barReporter{w: w}
		return r.report
	case config.ProgressNone:
		return nil
	default:
		r := &lineReporter{w: w}
		return r.report
	}
}

// lineReporter rewrites one status line per file and ends it on the last fragment:
//
//	[00:01:12] [2/3] [66.67%] 8_589_803_520/12_884_705_280 bytes | movie.mp4
type lineReporter struct {
	w io.Writer
}

func (r *lineReporter) report(p models.Progress) {
	end := "\r"
	if p.Done() {
		end = "\n"
	}
	fmt.Fprintf(r.w, "[%s] [%d/%d] [%.2f%%] %s/%s bytes | %s%s",
		utils.FormatDuration(p.Elapsed), p.Fragment, p.Fragments, p.Ratio()*100,
		groupDigits(p.Written), groupDigits(p.Total), p.Name, end,
	)
}

// barReporter draws one byte progress bar per file.
type barReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *barReporter) report(p models.Progress) {
	if r.bar == nil || p.Fragment == 1 {
		r.bar = newBytesBar(r.w, p.Total, fmt.Sprintf("Splitting %s", p.Name))
	}
	_ = r.bar.Set64(p.Written)
	if p.Done() {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// newBytesBar is progressbar.DefaultBytes with a configurable writer.
func newBytesBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowTotalBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// groupDigits renders n with '_' thousands separators.
func groupDigits(n int64) string {
	return strings.ReplaceAll(humanize.Comma(n), ",", "_")
}
