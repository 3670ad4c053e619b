package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/spf13/afero"
)

// fileMode gives group write access to snapshot and published files so the
// ingest process running under the same group can pick them up.
const fileMode os.FileMode = 0o664

// Paths names the three snapshot files of one run.
type Paths struct {
	New   string
	Last  string
	Delta string
}

// NewPaths builds run file names for a duration class and format extension.
// The delta name carries the run time so every published file is unique.
func NewPaths(stateDir, publishDir string, duration domain.Duration, ext string, runAt time.Time) Paths {
	d := string(duration)
	return Paths{
		New:   filepath.Join(stateDir, "new_snotel_"+d+"."+ext),
		Last:  filepath.Join(stateDir, "last_snotel_"+d+"."+ext),
		Delta: filepath.Join(publishDir, "snotel_scraped_"+d+"."+runAt.UTC().Format("20060102_150405")+"."+ext),
	}
}

// Store reads and writes snapshot files as newline-terminated lines.
type Store struct {
	fs afero.Fs
}

// NewStore creates a Store on fs. Use afero.NewOsFs() in production.
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Exists reports whether path is present.
func (s *Store) Exists(path string) (bool, error) {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return ok, nil
}

// ReadLines returns the lines of path without line terminators.
func (s *Store) ReadLines(path string) ([]string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fileError("open", path, err)
	}
	defer f.Close()
	return readLines(f)
}

// WriteLines replaces path with lines, creating parent directories.
func (s *Store) WriteLines(path string, lines []string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	return s.writeFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, lines)
}

// AppendLines appends lines to an existing file.
func (s *Store) AppendLines(path string, lines []string) error {
	return s.writeFile(path, os.O_APPEND|os.O_WRONLY, lines)
}

// Copy replaces dst with the contents of src.
func (s *Store) Copy(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return fileError("open", src, err)
	}
	defer in.Close()

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0o775); err != nil {
		return fmt.Errorf("create dir for %s: %w", dst, err)
	}
	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return fileError("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// Remove deletes path.
func (s *Store) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil {
		return fileError("remove", path, err)
	}
	return nil
}

// Dedupe rewrites path so each line appears once, keeping first occurrences
// in order. The original content is copied to path+".tmp" first and the copy
// is removed only after the rewrite succeeds, so a failed rewrite leaves the
// original recoverable from the copy.
func (s *Store) Dedupe(path string) error {
	tmp := path + ".tmp"
	if err := s.Copy(path, tmp); err != nil {
		return fmt.Errorf("dedupe %s: %w", path, err)
	}

	lines, err := s.ReadLines(tmp)
	if err != nil {
		return fmt.Errorf("dedupe %s: %w", path, err)
	}
	if err := s.WriteLines(path, domain.Dedupe(lines)); err != nil {
		return fmt.Errorf("dedupe %s: %w", path, err)
	}
	return s.Remove(tmp)
}

func (s *Store) writeFile(path string, flag int, lines []string) error {
	f, err := s.fs.OpenFile(path, flag, fileMode)
	if err != nil {
		return fileError("open", path, err)
	}

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

// fileError marks missing files as domain.ErrFileState.
func fileError(op, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrFileState, op, path, err)
	}
	return fmt.Errorf("%s %s: %w", op, path, err)
}
