// Package texture decodes and generates the images the water techniques
// sample. Nothing here touches the graphics context.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

// ErrTruncatedTGA is returned when pixel data ends early.
var ErrTruncatedTGA = errors.New("TGA data truncated")

// DecodeTGA decodes uncompressed and RLE true-color TGA images with 24 or
// 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTruncatedTGA
	}

	idLength := int(data[0])
	kind := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	depth := int(data[16]) / 8
	topDown := data[17]&0x20 != 0

	if data[1] != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if kind != TGATypeUncompressed && kind != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", kind)
	}
	if depth != 3 && depth != 4 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", depth*8)
	}

	src := data[min(tgaHeaderSize+idLength, len(data)):]
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	total := width * height

	put := func(n int, c color.RGBA) {
		y := n / width
		if !topDown {
			y = height - 1 - y
		}
		img.SetRGBA(n%width, y, c)
	}
	pixel := func(p []byte) color.RGBA {
		c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
		if depth == 4 {
			c.A = p[3]
		}
		return c
	}

	if kind == TGATypeUncompressed {
		if len(src) < total*depth {
			return nil, ErrTruncatedTGA
		}
		for n := 0; n < total; n++ {
			put(n, pixel(src[n*depth:]))
		}
		return img, nil
	}

	n, pos := 0, 0
	for n < total {
		if pos >= len(src) {
			return nil, ErrTruncatedTGA
		}
		header := src[pos]
		pos++
		count := int(header&0x7f) + 1
		repeat := header&0x80 != 0

		for i := 0; i < count && n < total; i++ {
			if pos+depth > len(src) {
				return nil, ErrTruncatedTGA
			}
			put(n, pixel(src[pos:]))
			n++
			if !repeat {
				pos += depth
			}
		}
		if repeat {
			pos += depth
		}
	}
	return img, nil
}
