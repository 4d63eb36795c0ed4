// Package simcam is the simulator's camera and fill light. The scene comes
// from an image file (JPEG, PNG, or WebP) or a synthetic test pattern, and
// captures are resized to the requested resolution and encoded as JPEG,
// matching what the real sensor would hand back.
package simcam

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// Camera simulates the capture hardware over a fixed scene.
type Camera struct {
	scene image.Image
}

// Open loads the scene image, or synthesizes a test pattern when path is
// empty. WebP scenes are supported so externally produced photos work too.
func Open(path string) (*Camera, error) {
	if path == "" {
		return &Camera{scene: testPattern()}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("simcam: open scene: %w", err)
	}
	defer f.Close()

	var scene image.Image
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		scene, err = webp.Decode(f)
	} else {
		scene, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("simcam: decode scene %s: %w", path, err)
	}

	return &Camera{scene: scene}, nil
}

// Frame returns a small viewfinder preview for the darkness check.
func (c *Camera) Frame() (image.Image, error) {
	return imaging.Resize(c.scene, 64, 48, imaging.Box), nil
}

// Capture resizes the scene to the requested resolution code ("WxH") and
// encodes it as JPEG. An unknown code is a capture failure.
func (c *Camera) Capture(resolution string) ([]byte, error) {
	w, h, err := parseResolution(resolution)
	if err != nil {
		return nil, err
	}

	shot := imaging.Fill(c.scene, w, h, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, shot, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("simcam: encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// Focus simulates the autofocus sweep. The simulated lens has nothing to
// move, so this returns immediately.
func (c *Camera) Focus() error {
	return nil
}

func parseResolution(code string) (int, int, error) {
	parts := strings.SplitN(code, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("simcam: resolution code %q not accepted", code)
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("simcam: resolution code %q not accepted", code)
	}
	return w, h, nil
}

// testPattern synthesizes a scene with broad tonal range so brightness
// sampling and capture sizing behave sensibly without a scene file.
func testPattern() image.Image {
	const w, h = 1280, 960
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

// Light simulates the fill light.
type Light struct {
	on bool
}

// Set turns the fill light on or off.
func (l *Light) Set(on bool) { l.on = on }

// On reports the current light state.
func (l *Light) On() bool { return l.on }
