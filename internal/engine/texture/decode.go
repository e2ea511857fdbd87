// Package texture decodes image files and keeps a named store of GPU textures.
package texture

import (
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image, choosing the decoder from the file name's
// extension. TGA has no magic number so it cannot be sniffed; JPEG, BMP and
// WebP are detected from their headers.
func Decode(r io.Reader, name string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tga":
		img, err := tga.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode tga %s: %w", name, err)
		}
		return img, nil
	case ".png":
		img, err := png.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode png %s: %w", name, err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return img, nil
	}
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ToRGBA converts img to RGBA. Images whose sides are not powers of two, or
// exceed maxSize when maxSize > 0, are resampled.
func ToRGBA(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := NextPowerOfTwo(b.Dx()), NextPowerOfTwo(b.Dy())
	if maxSize > 0 {
		w, h = min(w, maxSize), min(h, maxSize)
	}

	if rgba, ok := img.(*image.RGBA); ok && w == b.Dx() && h == b.Dy() && b.Min == (image.Point{}) {
		return rgba
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		stddraw.Draw(dst, dst.Bounds(), img, b.Min, stddraw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
