package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"nsplitter/internal/collector"
	"nsplitter/internal/errs"
	"nsplitter/internal/metadata"
	"nsplitter/internal/splitter"
	"nsplitter/pkg/models"
)

type Options struct {
	Root      string
	Extension string
	Recursive bool

	// Journal skips files already split with the same size and mod time.
	Journal bool
}

/*
Engine feeds files to the splitter one at a time.
1. Initialize() - load the journal
2. SplitFiles() / PerformFullScan() - split a work list in the foreground
3. Start() + ProcessChanges() - split files reported by the watcher in the background
4. Shutdown() - stop the background worker

Jobs are serialized by mu so two jobs never write the same split directory.
A failed file is recorded in the stats and the batch moves on.
*/
type Engine struct {
	opts         Options
	splitter     *splitter.Splitter
	metadata     *metadata.Manager
	changeChan   chan []models.FileEvent
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	mu           sync.Mutex
	totals       models.BatchStats
}

func NewEngine(opts Options, s *splitter.Splitter) *Engine {
	e := &Engine{
		opts:         opts,
		splitter:     s,
		changeChan:   make(chan []models.FileEvent, 10),
		shutdownChan: make(chan struct{}),
	}
	if opts.Journal && opts.Root != "" {
		e.metadata = metadata.NewManager(opts.Root)
	}
	return e
}

func (e *Engine) Initialize() error {
	if e.metadata == nil {
		return nil
	}
	if err := e.metadata.LoadMetadata(); err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	log.Printf("Loaded journal %s (%d files)", e.metadata.Path(), e.metadata.Count())
	return nil
}

// SplitFiles splits each path in order. It stops early only when ctx is
// cancelled; the file in progress always runs to completion.
func (e *Engine) SplitFiles(ctx context.Context, paths []string) *models.BatchStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := &models.BatchStats{TotalFiles: len(paths)}
	recorded := false

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			log.Printf("Batch cancelled, %d files not processed", stats.TotalFiles-stats.SplitFiles-stats.SkippedFiles-stats.FailedFiles)
			break
		}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = errs.NewNotFoundError(path, err)
			}
			e.fail(stats, path, err)
			continue
		}

		if e.metadata != nil && !e.metadata.IsPending(path, info) {
			log.Printf("Skipping %s: already split", path)
			stats.SkippedFiles++
			continue
		}

		splitDir, err := e.splitter.Split(path, info.Size())
		if err != nil {
			e.fail(stats, path, err)
			continue
		}

		fragments := splitter.FragmentCount(info.Size(), e.splitter.MaxSplitSize())
		stats.SplitFiles++
		stats.Fragments += fragments
		stats.Bytes += info.Size()
		log.Printf("Split %s into %d fragments in %s", path, fragments, splitDir)

		if e.metadata != nil {
			e.metadata.RecordSplit(models.SplitRecord{
				Path:      path,
				Size:      info.Size(),
				ModTime:   info.ModTime(),
				SplitDir:  splitDir,
				Fragments: fragments,
				SplitAt:   time.Now(),
			})
			recorded = true
		}
	}

	if recorded {
		if err := e.metadata.SaveMetadata(); err != nil {
			log.Printf("Warning: failed to save journal: %v", err)
		}
	}

	e.accumulate(stats)
	return stats
}

func (e *Engine) fail(stats *models.BatchStats, path string, err error) {
	log.Printf("Failed to split %s: %v", path, err)
	stats.FailedFiles++
	stats.Failures = append(stats.Failures, models.FileFailure{Path: path, Err: err})
}

func (e *Engine) accumulate(stats *models.BatchStats) {
	e.totals.TotalFiles += stats.TotalFiles
	e.totals.SplitFiles += stats.SplitFiles
	e.totals.SkippedFiles += stats.SkippedFiles
	e.totals.FailedFiles += stats.FailedFiles
	e.totals.Fragments += stats.Fragments
	e.totals.Bytes += stats.Bytes
	e.totals.Failures = append(e.totals.Failures, stats.Failures...)
}

// PerformFullScan collects the configured directory and splits what it finds.
func (e *Engine) PerformFullScan(ctx context.Context) (*models.BatchStats, error) {
	files, err := collector.Collect(e.opts.Root, e.opts.Extension, e.opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}
	files = slices.DeleteFunc(files, func(path string) bool {
		name := filepath.Base(path)
		return name == metadata.JournalFile || name == metadata.JournalFile+".tmp"
	})

	log.Printf("Found %d %s files in %s", len(files), e.opts.Extension, e.opts.Root)
	return e.SplitFiles(ctx, files), nil
}

func (e *Engine) Start(ctx context.Context) error {
	e.wg.Add(1)
	go e.processChanges(ctx)

	return nil
}

func (e *Engine) ProcessChanges(changes []models.FileEvent) error {
	select {
	case <-e.shutdownChan:
		return fmt.Errorf("split engine is shutting down")
	default:
	}

	select {
	case e.changeChan <- changes:
		return nil
	case <-e.shutdownChan:
		return fmt.Errorf("split engine is shutting down")
	}
}

func (e *Engine) processChanges(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.shutdownChan:
			return
		case changes := <-e.changeChan:
			e.handleChanges(ctx, changes)
		}
	}
}

func (e *Engine) handleChanges(ctx context.Context, changes []models.FileEvent) {
	seen := make(map[string]bool, len(changes))
	var paths []string
	for _, change := range changes {
		switch change.Operation {
		case "CREATE", "MODIFY", "SCAN":
			if !seen[change.Path] {
				seen[change.Path] = true
				paths = append(paths, change.Path)
			}
		}
	}

	if len(paths) == 0 {
		return
	}
	stats := e.SplitFiles(ctx, paths)
	log.Printf("Processed %d changed files: %d split, %d skipped, %d failed",
		stats.TotalFiles, stats.SplitFiles, stats.SkippedFiles, stats.FailedFiles)
}

// Totals returns the stats accumulated over every batch run by this engine.
func (e *Engine) Totals() models.BatchStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	totals := e.totals
	totals.Failures = append([]models.FileFailure(nil), e.totals.Failures...)
	return totals
}

func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		close(e.shutdownChan)
	})

	e.wg.Wait()
}
