package device

import (
	"github.com/sightbox/sightbox/internal/prompt"
	"github.com/sightbox/sightbox/internal/vision"
)

// captureDoneMsg is sent when a capture has been taken, validated, and
// archived. The image bytes are handed on to the transport and not retained
// by the model.
type captureDoneMsg struct {
	data      []byte
	seq       int
	imagePath string
}

// captureFailedMsg is sent when the capture pipeline fails before sending.
type captureFailedMsg struct {
	err error
}

// focusDoneMsg is sent when the autofocus sweep finishes.
type focusDoneMsg struct{}

// analysisDoneMsg carries the terminal outcome of one analysis request.
type analysisDoneMsg struct {
	outcome    vision.Outcome
	promptMode prompt.Mode
	seq        int
	imagePath  string
	fromBrowse bool
}

// clearNoticeMsg clears a transient notice after a timeout.
type clearNoticeMsg struct{}

// idleTickMsg drives the screensaver timeout check.
type idleTickMsg struct{}
