// Package unpack reconstructs the files held in an allcode archive on
// disk, creating parent directories as needed.
//
// Failures are contained to the record that caused them: a malformed
// block is skipped with a warning and a record that cannot be written is
// reported and skipped. Only a missing archive aborts the run.
package unpack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/allcode-tools/allcode/allcode"
	"github.com/allcode-tools/allcode/internal/logging"
	"github.com/allcode-tools/allcode/internal/treehash"
	"github.com/allcode-tools/allcode/internal/writefile"
)

// DefaultArchive is the archive read when no path is given.
const DefaultArchive = "allcode"

var (
	// ErrArchiveNotFound is returned when the archive does not exist.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrOutsideRoot is the cause of a failed record whose path is
	// absolute or escapes the destination directory while containment
	// is enabled.
	ErrOutsideRoot = errors.New("path outside destination directory")
	// ErrEmptyPath is the cause of a failed record with no path.
	ErrEmptyPath = errors.New("empty path")
)

// Failure is a record that could not be written.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("cannot write %s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result reports what an unpack did.
type Result struct {
	Archive string
	// Blocks is the number of raw blocks the archive split into,
	// including empty ones.
	Blocks int
	// Written holds the paths written, in archive order.
	Written []string
	// Planned holds the paths a dry run would have written.
	Planned []string
	// Dirs holds the directories created.
	Dirs    []string
	Failed  []Failure
	Skipped []allcode.Skip
}

// Sum returns the h1 hash of the files in r.Written as they are now on
// disk. Unpacking the same archive twice yields the same sum.
func (r *Result) Sum() (string, error) {
	return treehash.Files(r.Written)
}

// Option configures an Unpacker.
type Option func(*Unpacker)

// WithDir resolves relative record paths against dir instead of the
// current directory. Absolute record paths are unaffected.
func WithDir(dir string) Option {
	return func(u *Unpacker) {
		u.dir = dir
	}
}

// WithContainment rejects records whose path is absolute or refers
// outside the destination directory. By default any path is written.
func WithContainment(contain bool) Option {
	return func(u *Unpacker) {
		u.contain = contain
	}
}

// WithAtomic writes each file to a temporary file first and renames it
// into place.
func WithAtomic(atomic bool) Option {
	return func(u *Unpacker) {
		u.atomic = atomic
	}
}

// WithDryRun parses the archive and reports what would be written
// without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(u *Unpacker) {
		u.dryRun = dryRun
	}
}

// WithLogger sets the logger progress is reported to.
// By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(u *Unpacker) {
		u.log = l
	}
}

// Unpacker extracts archives. An Unpacker is not safe for concurrent use
// by multiple goroutines.
type Unpacker struct {
	dir     string
	contain bool
	atomic  bool
	dryRun  bool
	log     *log.Logger
}

// New returns an Unpacker configured by opts.
func New(opts ...Option) *Unpacker {
	u := &Unpacker{
		dir: ".",
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.log == nil {
		u.log = logging.Discard()
	}
	return u
}

// Unpack is shorthand for New(opts...).Unpack(archive).
func Unpack(archive string, opts ...Option) (*Result, error) {
	return New(opts...).Unpack(archive)
}

// Unpack extracts every record of the named archive, or DefaultArchive
// if archive is empty. The returned error is non-nil only when the
// archive itself cannot be read; per-record problems are reported in
// the Result.
func (u *Unpacker) Unpack(archive string) (*Result, error) {
	if archive == "" {
		archive = DefaultArchive
	}
	data, err := os.ReadFile(archive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			u.log.Error("archive not found", "path", archive)
			return nil, fmt.Errorf("%w: %w", ErrArchiveNotFound, err)
		}
		u.log.Error("cannot read archive", "path", archive, "err", err)
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if !utf8.Valid(data) {
		u.log.Warn("archive is not valid UTF-8", "path", archive)
	}
	text := allcode.NormalizeNewlines(string(data))
	r := &Result{
		Archive: archive,
		Blocks:  allcode.CountBlocks(text),
	}
	u.log.Info("archive loaded", "path", archive, "bytes", len(data))
	u.log.Info("blocks found", "count", r.Blocks)

	i := 0
	for block := range allcode.Blocks(text) {
		u.unpackBlock(r, i, block)
		i++
	}

	if u.dryRun {
		u.log.Info("dry run complete", "files", len(r.Planned), "failed", len(r.Failed), "skipped", len(r.Skipped))
	} else {
		u.log.Info("build complete", "written", len(r.Written), "failed", len(r.Failed), "skipped", len(r.Skipped))
	}
	return r, nil
}

func (u *Unpacker) unpackBlock(r *Result, index int, block string) {
	rec, skip, ok := allcode.ParseIndexed(index, block)
	if !ok && skip == nil {
		return
	}
	u.log.Info("processing block", "index", index, "header", allcode.Preview(block))
	if skip != nil {
		u.log.Warn("skipping block", "index", index, "header", skip.Preview, "err", skip.Err)
		r.Skipped = append(r.Skipped, *skip)
		return
	}
	u.log.Debug("record parsed", "path", rec.Path, "bytes", len(rec.Content))

	target, err := u.target(rec.Path)
	if err != nil {
		u.fail(r, rec.Path, err)
		return
	}
	if u.dryRun {
		u.log.Info("would write file", "path", target, "bytes", len(rec.Content))
		r.Planned = append(r.Planned, target)
		return
	}
	if err := u.ensureDir(r, filepath.Dir(target)); err != nil {
		u.fail(r, target, err)
		return
	}
	if err := u.write(target, []byte(rec.Content)); err != nil {
		u.fail(r, target, err)
		return
	}
	u.log.Info("wrote file", "path", target)
	r.Written = append(r.Written, target)
}

// target returns the filesystem path a record is written to.
func (u *Unpacker) target(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if u.contain && !filepath.IsLocal(path) {
		return "", ErrOutsideRoot
	}
	if filepath.IsAbs(path) || u.dir == "" || u.dir == "." {
		return path, nil
	}
	return filepath.Join(u.dir, path), nil
}

// ensureDir creates dir and any missing parents. An existing path is
// left alone even if it is not a directory; the write then fails.
func (u *Unpacker) ensureDir(r *Result, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return err
	}
	u.log.Info("created directory", "path", dir)
	r.Dirs = append(r.Dirs, dir)
	return nil
}

func (u *Unpacker) write(path string, data []byte) error {
	if u.atomic {
		return writefile.WriteAtomic(path, data)
	}
	return writefile.WriteFile(path, data)
}

func (u *Unpacker) fail(r *Result, path string, err error) {
	u.log.Error("cannot write file", "path", path, "err", err)
	r.Failed = append(r.Failed, Failure{Path: path, Err: err})
}
