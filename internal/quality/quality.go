// Package quality manages the ordered table of capture quality modes and
// validates delivered image sizes against the global hard ceiling.
package quality

import (
	"errors"
	"fmt"
)

// ErrOversized is returned by Validate when a capture exceeds the hard
// ceiling. It is fatal for that capture and must not be retried.
var ErrOversized = errors.New("capture exceeds hard size ceiling")

// Mode is one named bundle of capture resolution and byte-size budget.
// Modes are built once from configuration and never mutated.
type Mode struct {
	Name        string
	Label       string
	Resolution  string // "WxH", must be a code the camera driver accepts
	TargetBytes int
	MaxBytes    int
}

// Selector holds the immutable mode table and the single active index.
type Selector struct {
	modes   []Mode
	index   int
	ceiling int
}

// NewSelector builds a selector over the configured modes. The ceiling is the
// absolute size limit applied by Validate regardless of the active mode.
func NewSelector(modes []Mode, ceilingBytes int) (*Selector, error) {
	if len(modes) == 0 {
		return nil, errors.New("quality: no modes configured")
	}
	if ceilingBytes <= 0 {
		return nil, errors.New("quality: ceiling must be positive")
	}
	for _, m := range modes {
		if m.TargetBytes > m.MaxBytes {
			return nil, fmt.Errorf("quality: mode %q target %d exceeds maximum %d",
				m.Name, m.TargetBytes, m.MaxBytes)
		}
	}
	return &Selector{modes: modes, ceiling: ceilingBytes}, nil
}

// Current returns the active mode.
func (s *Selector) Current() Mode {
	return s.modes[s.index]
}

// Cycle moves the selection by delta with wraparound in both directions.
// It has no side effect beyond the index update.
func (s *Selector) Cycle(delta int) {
	n := len(s.modes)
	s.index = ((s.index+delta)%n + n) % n
}

// Index returns the active selection index.
func (s *Selector) Index() int { return s.index }

// Len returns the number of configured modes.
func (s *Selector) Len() int { return len(s.modes) }

// Validate checks a delivered capture size against the global hard ceiling.
// The ceiling is independent of the active mode's own maximum.
func (s *Selector) Validate(sizeBytes int) error {
	if sizeBytes > s.ceiling {
		return fmt.Errorf("%w: %d > %d bytes", ErrOversized, sizeBytes, s.ceiling)
	}
	return nil
}
