package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nsplitter/internal/utils"
	"nsplitter/pkg/models"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
// Large files keep producing WRITE events while they are copied in.
const DefaultDebounce = 2 * time.Second

/*
Watcher reports files that end with the watched extension once they stop
changing:
1. AddWatch() - register a directory (and its subdirectories when recursive)
2. Start() - begin handling fsnotify events
3. Changes() - debounced CREATE / MODIFY events
4. Close() - stop and release the fsnotify watcher

Split directories (<stem>.split.<ext>) are never watched; the fragments
written into them are not interesting.
*/
type Watcher struct {
	fsNotifyWatcher *fsnotify.Watcher
	extension       string
	recursive       bool
	debounce        time.Duration
	watchedDirs     map[string]bool
	changeChan      chan models.FileEvent
	errorChan       chan error
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.RWMutex
	debouncer       map[string]*time.Timer
	debounceMu      sync.Mutex
}

func NewWatcher(extension string, recursive bool, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		fsNotifyWatcher: fsWatcher,
		extension:       extension,
		recursive:       recursive,
		debounce:        debounce,
		watchedDirs:     make(map[string]bool),
		changeChan:      make(chan models.FileEvent),
		errorChan:       make(chan error, 10),
		ctx:             ctx,
		cancel:          cancel,
		debouncer:       make(map[string]*time.Timer),
	}, nil
}

func (w *Watcher) AddWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.recursive {
		return w.addDirLocked(path)
	}

	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if walkPath != path && isSplitDir(walkPath) {
			return filepath.SkipDir
		}
		return w.addDirLocked(walkPath)
	})
}

func (w *Watcher) addDirLocked(dir string) error {
	if w.watchedDirs[dir] {
		return nil
	}
	if err := w.fsNotifyWatcher.Add(dir); err != nil {
		return err
	}
	w.watchedDirs[dir] = true
	log.Printf("Watching directory: %s", dir)
	return nil
}

func (w *Watcher) WatchedDirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dirs := make([]string, 0, len(w.watchedDirs))
	for dir := range w.watchedDirs {
		dirs = append(dirs, dir)
	}
	return dirs
}

func (w *Watcher) Start() {
	go w.handleEvents()
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsNotifyWatcher.Events:
			if !ok {
				return
			}
			w.processEvent(event)
		case err, ok := <-w.fsNotifyWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errorChan <- err:
			default:
				log.Printf("Dropping watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	// Directories are never reported; "movie.split.mp4" matches ".mp4".
	if event.Op&fsnotify.Create == fsnotify.Create && utils.IsDirectory(event.Name) {
		if w.recursive && !isSplitDir(event.Name) {
			w.mu.Lock()
			if err := w.addDirLocked(event.Name); err != nil {
				log.Printf("Failed to watch new directory %s: %v", event.Name, err)
			}
			w.mu.Unlock()
		}
		return
	}

	if !strings.HasSuffix(filepath.Base(event.Name), w.extension) {
		return
	}

	var operation string
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		operation = "CREATE"
	case event.Op&fsnotify.Write == fsnotify.Write:
		operation = "MODIFY"
	default:
		return
	}

	w.debouncedSend(event.Name, func() {
		select {
		case w.changeChan <- models.FileEvent{
			Path:      event.Name,
			Operation: operation,
			Timestamp: time.Now(),
		}:
		case <-w.ctx.Done():
		}
	})
}

func isSplitDir(path string) bool {
	return strings.Contains(filepath.Base(path), ".split.")
}
