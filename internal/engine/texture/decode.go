package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Decode decodes an image file, choosing the decoder by name for formats
// without a magic number.
func Decode(data []byte, name string) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to RGBA with its origin at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

var frameExts = []string{".jpg", ".png", ".bmp", ".tga"}

// LoadFrames reads consecutive frames named fmt.Sprintf(pattern, i) plus an
// image extension from dir, stopping at the first missing index or at limit.
func LoadFrames(dir, pattern string, limit int) ([]*image.RGBA, error) {
	var frames []*image.RGBA
	for i := 0; i < limit; i++ {
		img, err := loadFrame(dir, fmt.Sprintf(pattern, i))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, img)
	}
	return frames, nil
}

func loadFrame(dir, base string) (*image.RGBA, error) {
	for _, ext := range frameExts {
		name := filepath.Join(dir, base+ext)
		data, err := os.ReadFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return Decode(data, name)
	}
	return nil, fs.ErrNotExist
}
