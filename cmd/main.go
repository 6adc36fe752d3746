package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nsplitter/internal/batch"
	"nsplitter/internal/collector"
	"nsplitter/internal/config"
	"nsplitter/internal/splitter"
	"nsplitter/internal/utils"
	"nsplitter/internal/watcher"
	"nsplitter/pkg/models"
)

var (
	configPath   string
	dirPath      string
	extension    string
	recursive    bool
	watchMode    bool
	bufferSize   string
	maxSplitSize string
	removeSource bool
	journal      bool
	progressMode string
	refreshRate  int
	dryRun       bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "nsplitter [files...]",
		Short: "Split large files into numbered fragments",
		Long: `Split large files into size-bounded fragments stored next to the input in
<name>.split.<ext>/00, 01, ... so they fit on filesystems that cap file size,
such as FAT32 (4 GiB). Fragments are raw bytes; concatenating them in order
gives back the original file.`,
		Run: runApp,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.Flags().StringVar(&dirPath, "dir", "", "Directory to scan for files to split")
	rootCmd.Flags().StringVar(&extension, "ext", "", "Only split files whose name ends with this suffix, e.g. .mp4 (required with --dir)")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories of --dir")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Keep running and split new files as they appear in --dir")
	rootCmd.Flags().StringVar(&bufferSize, "buffer", "32KiB", "Read/write buffer size (KiB/MiB are binary, K/M decimal)")
	rootCmd.Flags().StringVar(&maxSplitSize, "max-size", "", "Maximum fragment size (default 4GiB-64KiB)")
	rootCmd.Flags().BoolVar(&removeSource, "remove-source", false, "Delete each input file after it was split successfully")
	rootCmd.Flags().BoolVar(&journal, "journal", false, "Record split files in <dir>/.nsplitter.json and skip them next time (always on with --watch)")
	rootCmd.Flags().StringVar(&progressMode, "progress", config.DefaultProgress, "Progress output: line, bar or none")
	rootCmd.Flags().IntVar(&refreshRate, "refresh", int(config.DefaultRefresh/time.Second), "Full rescan interval in seconds in watch mode (0 disables)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the fragment layout without writing anything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read working directory: %v\n", err)
		os.Exit(1)
	}

	flags := cmd.Flags()
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		ConfigPath:        configPath,
		Files:             args,
		Dir:               dirPath,
		Watch:             watchMode,
		DryRun:            dryRun,
		Extension:         extension,
		ExtensionSet:      flags.Changed("ext"),
		Recursive:         recursive,
		RecursiveSet:      flags.Changed("recursive"),
		BufferSize:        bufferSize,
		BufferSizeSet:     flags.Changed("buffer"),
		MaxSplitSize:      maxSplitSize,
		MaxSplitSizeSet:   flags.Changed("max-size"),
		RemoveSource:      removeSource,
		RemoveSourceSet:   flags.Changed("remove-source"),
		Journal:           journal,
		JournalSet:        flags.Changed("journal"),
		Progress:          progressMode,
		ProgressSet:       flags.Changed("progress"),
		RefreshSeconds:    refreshRate,
		RefreshSecondsSet: flags.Changed("refresh"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsageExamples()
		os.Exit(1)
	}
	if eff.ConfigFile != "" {
		log.Printf("Using config file %s", eff.ConfigFile)
	}

	if eff.DryRun {
		if err := runDryRun(os.Stdout, eff); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	s, err := splitter.New(splitter.Options{
		MaxSplitSize: eff.MaxSplitSize,
		BufferSize:   eff.BufferSize,
		RemoveSource: eff.RemoveSource,
		Progress:     newProgressReporter(eff.Progress, os.Stdout),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	var stats *models.BatchStats
	switch eff.Mode {
	case config.ModeWatch:
		err = runWatch(ctx, eff, s)
	case config.ModeBatch:
		stats, err = runBatch(ctx, eff, s)
	default:
		stats = batch.NewEngine(batch.Options{}, s).SplitFiles(ctx, eff.Files)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Finished in %s", utils.FormatElapsed(start))

	if stats != nil {
		printSummary(os.Stdout, stats)
		if stats.FailedFiles > 0 {
			os.Exit(1)
		}
	}
}

func printUsageExamples() {
	fmt.Fprintf(os.Stderr, `
Usage Examples:
===============

1. Split single files:
   %s /media/movie.mp4 /media/backup.img

2. Split every .mp4 below a directory:
   %s --dir /media --ext .mp4 --recursive

3. Watch a directory and split new files as they arrive:
   %s --dir /incoming --ext .iso --watch --refresh 600

4. Show the fragment layout without writing anything:
   %s --dir /media --ext .mkv --dry-run

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func runBatch(ctx context.Context, eff config.EffectiveConfig, s *splitter.Splitter) (*models.BatchStats, error) {
	log.Printf("Splitting %s files in %s (recursive=%v)", eff.Extension, eff.Dir, eff.Recursive)

	engine := batch.NewEngine(batch.Options{
		Root:      eff.Dir,
		Extension: eff.Extension,
		Recursive: eff.Recursive,
		Journal:   eff.Journal,
	}, s)
	if err := engine.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize split engine: %w", err)
	}

	return engine.PerformFullScan(ctx)
}

func runWatch(ctx context.Context, eff config.EffectiveConfig, s *splitter.Splitter) error {
	log.Printf("Starting watch mode...")
	log.Printf("Watch path: %s", eff.Dir)
	log.Printf("Extension: %s (recursive=%v)", eff.Extension, eff.Recursive)
	log.Printf("Refresh rate: %s", eff.Refresh)

	engine := batch.NewEngine(batch.Options{
		Root:      eff.Dir,
		Extension: eff.Extension,
		Recursive: eff.Recursive,
		Journal:   true,
	}, s)
	if err := engine.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize split engine: %w", err)
	}

	w, err := watcher.NewWatcher(eff.Extension, eff.Recursive, eff.Debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.AddWatch(eff.Dir); err != nil {
		return fmt.Errorf("failed to add watch path: %w", err)
	}

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start split engine: %w", err)
	}
	defer engine.Shutdown()

	w.Start()

	log.Println("Performing initial scan...")
	if _, err := engine.PerformFullScan(ctx); err != nil {
		log.Printf("Warning: initial scan failed: %v", err)
	}

	var refresh <-chan time.Time
	if eff.Refresh > 0 {
		ticker := time.NewTicker(eff.Refresh)
		defer ticker.Stop()
		refresh = ticker.C
	}

	log.Println("Watching for new files. Press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutdown signal received...")
			totals := engine.Totals()
			printSummary(os.Stdout, &totals)
			return nil

		case event := <-w.Changes():
			if err := engine.ProcessChanges([]models.FileEvent{event}); err != nil {
				log.Printf("Error processing change: %v", err)
			}

		case err := <-w.Errors():
			log.Printf("Watcher error: %v", err)

		case <-refresh:
			log.Println("Performing periodic scan...")
			if _, err := engine.PerformFullScan(ctx); err != nil {
				log.Printf("Periodic scan failed: %v", err)
			}
		}
	}
}

func runDryRun(w io.Writer, eff config.EffectiveConfig) error {
	files := eff.Files
	if eff.Mode != config.ModeFiles {
		collected, err := collector.Collect(eff.Dir, eff.Extension, eff.Recursive)
		if err != nil {
			return err
		}
		files = collected
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", path, err)
			continue
		}
		printPlan(w, path, info.Size(), eff.MaxSplitSize)
	}
	return nil
}

func printPlan(w io.Writer, path string, size, maxSize int64) {
	plan := splitter.Plan(size, maxSize)
	fmt.Fprintf(w, "%s (%s bytes) -> %s [%d fragments]\n",
		path, groupDigits(size), splitter.SplitDirPath(path), len(plan))
	for _, f := range plan {
		fmt.Fprintf(w, "  %s  %s bytes @ %s\n", f.Name, groupDigits(f.Size), groupDigits(f.Offset))
	}
}

func printSummary(w io.Writer, stats *models.BatchStats) {
	fmt.Fprintf(w, "Split %d/%d files into %d fragments (%s bytes)",
		stats.SplitFiles, stats.TotalFiles, stats.Fragments, groupDigits(stats.Bytes))
	if stats.SkippedFiles > 0 {
		fmt.Fprintf(w, " (%d skipped)", stats.SkippedFiles)
	}
	if stats.FailedFiles > 0 {
		fmt.Fprintf(w, " (%d failed)", stats.FailedFiles)
	}
	fmt.Fprintln(w)

	for _, f := range stats.Failures {
		fmt.Fprintf(w, "  FAIL %s: %v\n", f.Path, f.Err)
	}
}
