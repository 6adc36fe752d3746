package splitter

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"nsplitter/internal/errs"
	"nsplitter/internal/utils"
	"nsplitter/pkg/models"
)

// Options configures a Splitter. Zero values fall back to the defaults.
type Options struct {
	MaxSplitSize int64
	BufferSize   int

	// RemoveSource deletes the input file after every fragment was written.
	RemoveSource bool

	// Progress is called after each completed fragment.
	Progress models.ProgressFunc
}

/*
Splitter cuts one file at a time into fragments of at most MaxSplitSize bytes:
1. FragmentCount() - how many fragments the file needs
2. SplitDirPath() - where they go, <stem>.split.<ext> next to the input
3. Split() - one forward pass over the input, one fragment file after another

A Splitter holds no per-job state and can be shared by concurrent Split calls
on different inputs.
*/
type Splitter struct {
	maxSplitSize int64
	bufferSize   int
	removeSource bool
	progress     models.ProgressFunc
}

func New(opts Options) (*Splitter, error) {
	if opts.MaxSplitSize == 0 {
		opts.MaxSplitSize = MaxSplitSize
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.MaxSplitSize < 0 {
		return nil, errs.ErrInvalidArgument.
			WithMessage("max split size must be positive").
			WithDetail("maxSplitSize", opts.MaxSplitSize)
	}
	if opts.BufferSize < 0 {
		return nil, errs.ErrInvalidArgument.
			WithMessage("buffer size must be positive").
			WithDetail("bufferSize", opts.BufferSize)
	}

	return &Splitter{
		maxSplitSize: opts.MaxSplitSize,
		bufferSize:   opts.BufferSize,
		removeSource: opts.RemoveSource,
		progress:     opts.Progress,
	}, nil
}

// Split splits path with the default threshold and the given buffer size.
func Split(path string, size int64, bufferSize int) (string, error) {
	if bufferSize <= 0 {
		return "", errs.ErrInvalidArgument.
			WithMessage("buffer size must be positive").
			WithDetail("bufferSize", bufferSize)
	}
	s, err := New(Options{BufferSize: bufferSize})
	if err != nil {
		return "", err
	}
	return s.Split(path, size)
}

func (s *Splitter) MaxSplitSize() int64 {
	return s.maxSplitSize
}

// Split writes the fragments of path into its split directory and returns
// that directory. size is trusted: the input is read for exactly size bytes.
// Fragments written before a failure are left on disk.
func (s *Splitter) Split(path string, size int64) (string, error) {
	if size < 0 {
		return "", errs.ErrInvalidArgument.
			WithMessage("file size must not be negative").
			WithDetail("path", path).
			WithDetail("size", size)
	}

	splitDir := SplitDirPath(path)
	if err := s.splitInto(path, size, splitDir); err != nil {
		return "", err
	}

	if s.removeSource {
		if err := os.Remove(path); err != nil {
			return "", errs.ErrIOFailure.
				WithMessage("failed to remove source file").
				WithDetail("path", path).
				WithCause(err)
		}
		log.Printf("Removed source file %s", path)
	}

	return splitDir, nil
}

func (s *Splitter) splitInto(path string, size int64, splitDir string) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := utils.EnsureDirectoryExists(splitDir); err != nil {
		return errs.ErrPermissionDenied.
			WithMessage("failed to create split directory").
			WithDetail("path", splitDir).
			WithCause(err)
	}

	name := filepath.Base(path)
	fragments := FragmentCount(size, s.maxSplitSize)
	state := newCopyState(size, s.maxSplitSize)
	buf := make([]byte, s.bufferSize)
	start := time.Now()

	for i := 0; !state.fileDone(); i++ {
		fragPath := filepath.Join(splitDir, FragmentName(i))
		if err := writeFragment(in, fragPath, i, state, buf); err != nil {
			return err
		}

		if s.progress != nil {
			s.progress(models.Progress{
				Elapsed:   time.Since(start),
				Fragment:  i + 1,
				Fragments: fragments,
				Written:   state.written,
				Total:     size,
				Name:      name,
			})
		}
	}

	return nil
}

func openInput(path string) (*os.File, error) {
	in, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, errs.NewNotFoundError(path, err)
		case errors.Is(err, fs.ErrPermission):
			return nil, errs.NewPermissionError(path, err)
		default:
			return nil, errs.NewIOError(path, 0, err)
		}
	}

	info, err := in.Stat()
	if err != nil {
		in.Close()
		return nil, errs.NewIOError(path, 0, err)
	}
	if !info.Mode().IsRegular() {
		in.Close()
		return nil, errs.ErrNotFound.
			WithMessage("not a regular file").
			WithDetail("path", path)
	}
	return in, nil
}

// writeFragment copies the next fragment from in to fragPath, overwriting it.
// The fragment is synced before it is closed.
func writeFragment(in io.Reader, fragPath string, index int, state *copyState, buf []byte) (err error) {
	out, err := os.OpenFile(fragPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return errs.ErrPermissionDenied.
				WithDetail("path", fragPath).
				WithDetail("fragment", index).
				WithCause(err)
		}
		return errs.NewIOError(fragPath, index, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errs.NewIOError(fragPath, index, cerr)
		}
	}()

	state.startFragment()
	for !state.fragmentDone() {
		n, rerr := io.ReadFull(in, buf[:state.nextRead(len(buf))])
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return errs.NewIOError(fragPath, index, werr)
			}
			state.advance(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				rerr = io.ErrUnexpectedEOF
			}
			return errs.NewIOError(fragPath, index, rerr)
		}
	}

	if err := out.Sync(); err != nil {
		return errs.NewIOError(fragPath, index, err)
	}
	return nil
}
