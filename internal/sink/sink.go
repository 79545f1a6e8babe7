// Package sink writes report payloads to JSON files.
package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultDir is where reports land when no directory is configured.
const DefaultDir = "data"

var (
	ErrInvalidName     = errors.New("invalid report name")
	ErrInvalidFilename = errors.New("invalid report filename")
)

var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Saver persists a named payload and returns where it went.
type Saver interface {
	Save(name string, payload any, filename string) (string, error)
}

// FileSink writes reports under Dir, creating it on first use.
type FileSink struct {
	Dir string
	now func() time.Time
}

var _ Saver = (*FileSink)(nil)

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileSink{Dir: dir, now: time.Now}
}

// DefaultFilename is report_<name>_<YYYYmmdd_HHMMSS>.json.
func DefaultFilename(name string, at time.Time) string {
	return fmt.Sprintf("report_%s_%s.json", name, at.Format("20060102_150405"))
}

// Save writes payload as indented UTF-8 JSON. An empty filename selects
// DefaultFilename. Filenames may not leave Dir.
func (s *FileSink) Save(name string, payload any, filename string) (path string, err error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if filename == "" {
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		filename = DefaultFilename(name, now())
	}
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	dir := s.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path = filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return path, nil
}

// ValidateFilename rejects names that would leave the sink directory or hide
// the file. An empty name is valid and selects the default.
func ValidateFilename(filename string) error {
	if filename == "" {
		return nil
	}
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return nil
}
