package texture

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// Builtin names are always available even without a data directory.
const (
	Blank = "blank"
	Flame = "texf"
	Wood  = "wood"
)

var builtins = map[string]func() *image.RGBA{
	Blank: blank,
	Flame: flame,
	Wood:  wood,
}

// Builtin returns a generated texture by name.
func Builtin(name string) (*image.RGBA, bool) {
	gen, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return gen(), true
}

func blank() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// flame is a soft radial falloff used for particle sprites.
func flame() *image.RGBA {
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float32(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := (float32(x)-half)/half, (float32(y)-half)/half
			a := 1 - math32.Sqrt(dx*dx+dy*dy)
			if a < 0 {
				a = 0
			}
			v := uint8(a * a * 255)
			img.SetRGBA(x, y, color.RGBA{v, v, v, v})
		}
	}
	return img
}

func wood() *image.RGBA {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			grain := 0.5 + 0.5*math32.Sin(float32(x)*0.6+math32.Sin(float32(y)*0.15)*2)
			r := uint8(110 + grain*50)
			g := uint8(70 + grain*30)
			b := uint8(35 + grain*15)
			img.SetRGBA(x, y, color.RGBA{r, g, b, 0xff})
		}
	}
	return img
}
