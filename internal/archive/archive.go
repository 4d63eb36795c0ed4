// Package archive persists captured images and analysis responses with
// sequential, collision-free names, and lists them for browse mode.
//
// Images are written as IMG_<seq>.JPG and responses as RSP_<seq>_<label>.TXT
// in the same directory. The filesystem is the source of truth: sequence
// numbers come from scanning existing image files, and browse listings are
// ordered by modification time so externally copied photos sort correctly.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrStorageDisabled is returned once the store has latched into its
// disabled state. Persistence stays off for the rest of the session.
var ErrStorageDisabled = errors.New("archive: storage unavailable")

var imagePattern = regexp.MustCompile(`^IMG_(\d+)\.(?:JPG|JPEG|jpg|jpeg|PNG|png|WEBP|webp)$`)

// Entry is one archived image for browse mode.
type Entry struct {
	Path     string
	Sequence int
	ModTime  time.Time
}

// Store writes to and lists a single archive directory. It assumes a single
// writer; nothing else appends files while the device runs.
type Store struct {
	dir      string
	next     int
	scanned  bool
	disabled bool
}

// Open prepares the archive directory. A directory that cannot be created
// or written disables the store: callers keep a usable device but cannot
// persist captures for the rest of the session.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.disabled = true
		return s, fmt.Errorf("archive: create %s: %w", dir, err)
	}
	return s, nil
}

// Dir returns the archive directory.
func (s *Store) Dir() string { return s.dir }

// Disabled reports whether persistence has been latched off.
func (s *Store) Disabled() bool { return s.disabled }

// NextSequence returns one greater than the highest sequence among existing
// image files, or 1 for an empty directory. The directory is scanned once,
// on first need; manual deletions between runs are tolerated and numbers are
// never reused within a session.
func (s *Store) NextSequence() (int, error) {
	if s.disabled {
		return 0, ErrStorageDisabled
	}
	if !s.scanned {
		max, err := s.scanMaxSequence()
		if err != nil {
			s.disabled = true
			return 0, fmt.Errorf("archive: scan %s: %w", s.dir, err)
		}
		s.next = max + 1
		s.scanned = true
	}
	seq := s.next
	s.next++
	return seq, nil
}

func (s *Store) scanMaxSequence() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := imagePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// SaveImage writes the encoded capture under the given sequence number and
// returns its path.
func (s *Store) SaveImage(data []byte, seq int) (string, error) {
	if s.disabled {
		return "", ErrStorageDisabled
	}
	path := filepath.Join(s.dir, fmt.Sprintf("IMG_%04d.JPG", seq))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.disabled = true
		return "", fmt.Errorf("archive: write image: %w", err)
	}
	return path, nil
}

// SaveResponse writes the complete analysis text with a small header naming
// the prompt and the source image. The archived text is never the truncated
// view.
func (s *Store) SaveResponse(text, promptLabel string, seq int, imagePath string) (string, error) {
	if s.disabled {
		return "", ErrStorageDisabled
	}
	path := filepath.Join(s.dir, fmt.Sprintf("RSP_%04d_%s.TXT", seq, sanitizeLabel(promptLabel)))
	body := fmt.Sprintf("Prompt: %s\nImage: %s\n---\n\n%s", promptLabel, imagePath, text)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		s.disabled = true
		return "", fmt.Errorf("archive: write response: %w", err)
	}
	return path, nil
}

// ListSaved returns archived images ordered by modification time, oldest
// first. Ordering uses filesystem timestamps, not filename sort, so photos
// copied in from elsewhere land where they belong.
func (s *Store) ListSaved() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", s.dir, err)
	}

	var saved []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := imagePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		seq, _ := strconv.Atoi(m[1])
		saved = append(saved, Entry{
			Path:     filepath.Join(s.dir, e.Name()),
			Sequence: seq,
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(saved, func(i, j int) bool {
		return saved[i].ModTime.Before(saved[j].ModTime)
	})
	return saved, nil
}

// sanitizeLabel makes a prompt label safe for a filename.
func sanitizeLabel(label string) string {
	label = strings.ToUpper(label)
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "NOTE"
	}
	return b.String()
}
