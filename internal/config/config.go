package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nsplitter/internal/splitter"
)

const (
	// ErrCodeNotFound means --config named a file that does not exist.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the config file or a flag value cannot be used.
	ErrCodeInvalid = "config_invalid"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "nsplitter.json"

const (
	DefaultRefresh  = 300 * time.Second
	DefaultDebounce = 2 * time.Second
	DefaultProgress = ProgressLine
)

const (
	ProgressLine = "line"
	ProgressBar  = "bar"
	ProgressNone = "none"
)

type Mode int

const (
	ModeFiles Mode = iota
	ModeBatch
	ModeWatch
)

func (m Mode) String() string {
	switch m {
	case ModeFiles:
		return "files"
	case ModeBatch:
		return "batch"
	case ModeWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// CLIArgs carries flag values together with whether each flag was set, so a
// flag explicitly set to its zero value still overrides the config file.
type CLIArgs struct {
	ConfigPath string

	Files []string
	Dir   string
	Watch bool

	DryRun bool

	Extension    string
	ExtensionSet bool

	Recursive    bool
	RecursiveSet bool

	BufferSize    string
	BufferSizeSet bool

	MaxSplitSize    string
	MaxSplitSizeSet bool

	RemoveSource    bool
	RemoveSourceSet bool

	Journal    bool
	JournalSet bool

	Progress    string
	ProgressSet bool

	RefreshSeconds    int
	RefreshSecondsSet bool
}

// FileConfig mirrors nsplitter.json.
type FileConfig struct {
	Dir            string `json:"dir"`
	Extension      string `json:"extension"`
	Recursive      *bool  `json:"recursive"`
	BufferSize     string `json:"buffer_size"`
	MaxSplitSize   string `json:"max_split_size"`
	RemoveSource   *bool  `json:"remove_source"`
	Journal        *bool  `json:"journal"`
	Progress       string `json:"progress"`
	RefreshSeconds *int   `json:"refresh_seconds"`
	DebounceMillis int    `json:"debounce_ms"`
}

// EffectiveConfig is the merged result consumed by the CLI.
type EffectiveConfig struct {
	Mode   Mode
	Files  []string
	Dir    string
	DryRun bool

	Extension string
	Recursive bool

	BufferSize   int
	MaxSplitSize int64
	RemoveSource bool
	Journal      bool
	Progress     string

	Refresh  time.Duration
	Debounce time.Duration

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// Error is a configuration error with an error code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path != "" && e.Err != nil {
			return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not a config error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective reads the config file and merges it with the flags.
//
// Lookup: --config must exist when given; otherwise <cwd>/nsplitter.json is optional.
// Precedence: flag set explicitly > config file > default.
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	var (
		cfgPath string
		fc      FileConfig
		exists  bool
		err     error
	)

	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absFrom(cwd, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwd, DefaultFile)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	if !exists {
		cfgPath = ""
	}

	eff, err := merge(cwd, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.ConfigFile = cfgPath
	return eff, nil
}

func merge(cwd string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		Files:    append([]string(nil), cli.Files...),
		DryRun:   cli.DryRun,
		Refresh:  DefaultRefresh,
		Debounce: DefaultDebounce,
	}

	eff.Dir = strings.TrimSpace(cli.Dir)
	if eff.Dir == "" && len(eff.Files) == 0 && strings.TrimSpace(fc.Dir) != "" {
		eff.Dir = absFrom(cwd, fc.Dir)
	}

	switch {
	case cli.Watch && len(eff.Files) > 0:
		return EffectiveConfig{}, fmt.Errorf("--watch cannot be combined with file arguments")
	case cli.Watch && eff.Dir == "":
		return EffectiveConfig{}, fmt.Errorf("--watch requires --dir")
	case cli.Watch:
		eff.Mode = ModeWatch
	case eff.Dir != "" && len(eff.Files) > 0:
		return EffectiveConfig{}, fmt.Errorf("give either file arguments or --dir, not both")
	case eff.Dir != "":
		eff.Mode = ModeBatch
	case len(eff.Files) > 0:
		eff.Mode = ModeFiles
	default:
		return EffectiveConfig{}, fmt.Errorf("nothing to split: pass files or --dir")
	}

	eff.Extension = fc.Extension
	if cli.ExtensionSet {
		eff.Extension = cli.Extension
	}
	if eff.Mode != ModeFiles && eff.Extension == "" {
		// an empty suffix would also match the fragments being written
		return EffectiveConfig{}, fmt.Errorf("--ext is required with --dir")
	}

	eff.Recursive = pickBool(cli.RecursiveSet, cli.Recursive, fc.Recursive, false)
	eff.RemoveSource = pickBool(cli.RemoveSourceSet, cli.RemoveSource, fc.RemoveSource, false)
	eff.Journal = pickBool(cli.JournalSet, cli.Journal, fc.Journal, false)
	if eff.Mode == ModeWatch {
		eff.Journal = true
	}

	bufRaw := pickString(cli.BufferSizeSet, cli.BufferSize, fc.BufferSize)
	eff.BufferSize = splitter.DefaultBufferSize
	if bufRaw != "" {
		n, err := ParseSize(bufRaw)
		if err != nil {
			return EffectiveConfig{}, fmt.Errorf("buffer size: %w", err)
		}
		if n > 1<<30 {
			return EffectiveConfig{}, fmt.Errorf("buffer size %d is larger than 1GiB", n)
		}
		eff.BufferSize = int(n)
	}

	maxRaw := pickString(cli.MaxSplitSizeSet, cli.MaxSplitSize, fc.MaxSplitSize)
	eff.MaxSplitSize = splitter.MaxSplitSize
	if maxRaw != "" {
		n, err := ParseSize(maxRaw)
		if err != nil {
			return EffectiveConfig{}, fmt.Errorf("max split size: %w", err)
		}
		eff.MaxSplitSize = n
	}

	eff.Progress = pickString(cli.ProgressSet, cli.Progress, fc.Progress)
	if eff.Progress == "" {
		eff.Progress = DefaultProgress
	}
	switch eff.Progress {
	case ProgressLine, ProgressBar, ProgressNone:
	default:
		return EffectiveConfig{}, fmt.Errorf("progress must be line, bar or none, got %q", eff.Progress)
	}

	if cli.RefreshSecondsSet {
		eff.Refresh = time.Duration(cli.RefreshSeconds) * time.Second
	} else if fc.RefreshSeconds != nil {
		eff.Refresh = time.Duration(*fc.RefreshSeconds) * time.Second
	}
	if eff.Refresh < 0 {
		return EffectiveConfig{}, fmt.Errorf("refresh must not be negative")
	}

	if fc.DebounceMillis < 0 {
		return EffectiveConfig{}, fmt.Errorf("debounce_ms must not be negative")
	}
	if fc.DebounceMillis > 0 {
		eff.Debounce = time.Duration(fc.DebounceMillis) * time.Millisecond
	}

	return eff, nil
}

func pickBool(set, cliValue bool, fileValue *bool, def bool) bool {
	if set {
		return cliValue
	}
	if fileValue != nil {
		return *fileValue
	}
	return def
}

func pickString(set bool, cliValue, fileValue string) string {
	if set {
		return strings.TrimSpace(cliValue)
	}
	return strings.TrimSpace(fileValue)
}

func absFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// readFileConfig returns exists=false without error when path is missing.
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
