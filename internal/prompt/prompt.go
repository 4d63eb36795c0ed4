// Package prompt manages the ordered table of analysis prompt modes.
package prompt

import "errors"

// Mode is one named instruction template sent alongside a capture.
// Modes are built once from configuration and never mutated.
type Mode struct {
	Name  string
	Label string
	Text  string // the full instruction text sent to the analysis service

	// NeverTruncate marks responses whose form matters (fixed-form poetry,
	// haiku counts). The presenter shows them whole even in brief mode.
	NeverTruncate bool
}

// Selector holds the immutable prompt table and the single active index.
type Selector struct {
	modes []Mode
	index int
}

// NewSelector builds a selector over the configured prompts in display order.
func NewSelector(modes []Mode) (*Selector, error) {
	if len(modes) == 0 {
		return nil, errors.New("prompt: no prompts configured")
	}
	return &Selector{modes: modes}, nil
}

// Current returns the active prompt mode.
func (s *Selector) Current() Mode {
	return s.modes[s.index]
}

// Cycle moves the selection by delta with wraparound in both directions.
func (s *Selector) Cycle(delta int) {
	n := len(s.modes)
	s.index = ((s.index+delta)%n + n) % n
}

// Index returns the active selection index.
func (s *Selector) Index() int { return s.index }

// Len returns the number of configured prompts.
func (s *Selector) Len() int { return len(s.modes) }
