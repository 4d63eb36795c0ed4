package device

import (
	"context"
	"image"

	"github.com/sightbox/sightbox/internal/vision"
)

// Camera is the capture hardware. Frame returns a cheap viewfinder preview
// for the darkness check; Capture delivers an encoded JPEG at the given
// resolution code; Focus runs the autofocus sweep and returns when the lens
// has settled.
type Camera interface {
	Frame() (image.Image, error)
	Capture(resolution string) ([]byte, error)
	Focus() error
}

// Light is the fill light used for dark scenes.
type Light interface {
	Set(on bool)
}

// Analyzer obtains analysis text for a capture. Implemented by
// vision.Client; stubbed in tests.
type Analyzer interface {
	Analyze(ctx context.Context, imageData []byte, promptText string) vision.Outcome
}
