package snapshot

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultThumbSize is the default thumbnail width in pixels.
const DefaultThumbSize = 256

var errNoImage = errors.New("snapshot: nothing rendered")

// Thumbnail scales img to the given width, keeping its aspect ratio.
func Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	return transform.Resize(img, width, height, transform.Linear)
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if img == nil {
		return errNoImage
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("snapshot: save %s: %w", path, err)
	}
	return nil
}

// Export writes the renderer's current frame to snapshotPath and, when thumbPath is not
// empty, a thumbWidth-wide copy to thumbPath.
func Export(r *Renderer, snapshotPath, thumbPath string, thumbWidth int) error {
	img := r.Image()
	if img == nil {
		return errNoImage
	}
	if snapshotPath != "" {
		if err := SavePNG(snapshotPath, img); err != nil {
			return err
		}
	}
	if thumbPath != "" {
		if thumbWidth <= 0 {
			thumbWidth = DefaultThumbSize
		}
		if err := SavePNG(thumbPath, Thumbnail(img, thumbWidth)); err != nil {
			return err
		}
	}
	return nil
}
