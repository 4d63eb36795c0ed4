// Package luma decides whether a viewfinder frame is too dark to shoot
// without the fill light.
package luma

import "image"

// Samples per axis. A 5x5 grid spread across the frame trades accuracy for
// speed; reading every pixel would stall the capture path on large frames.
const gridSize = 5

// Integer luma weights approximating 0.30R + 0.59G + 0.11B, scaled by 256.
const (
	weightR = 77
	weightG = 150
	weightB = 29
)

// IsDark samples a fixed grid of points, computes perceptual luma per sample,
// and compares the average against threshold (0-255 scale). An unreadable or
// degenerate frame reads as not-dark: this check must never block a capture.
func IsDark(frame image.Image, threshold int) bool {
	if frame == nil {
		return false
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return false
	}

	var total, count int
	for gy := 0; gy < gridSize; gy++ {
		for gx := 0; gx < gridSize; gx++ {
			x := b.Min.X + b.Dx()*(2*gx+1)/(2*gridSize)
			y := b.Min.Y + b.Dy()*(2*gy+1)/(2*gridSize)
			r, g, bl, _ := frame.At(x, y).RGBA()
			// RGBA returns 16-bit channels; drop to 8-bit before weighting.
			l := (weightR*int(r>>8) + weightG*int(g>>8) + weightB*int(bl>>8)) >> 8
			total += l
			count++
		}
	}

	return total/count < threshold
}
