// Package pattern generates reference images for exercising display
// pipelines.
package pattern

import (
	"image"
	"image/color"
)

// bar colors, full-saturation SMPTE ordering.
var bars = []color.RGBA{
	{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, // white
	{R: 0xff, G: 0xff, B: 0x00, A: 0xff}, // yellow
	{R: 0x00, G: 0xff, B: 0xff, A: 0xff}, // cyan
	{R: 0x00, G: 0xff, B: 0x00, A: 0xff}, // green
	{R: 0xff, G: 0x00, B: 0xff, A: 0xff}, // magenta
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff}, // red
	{R: 0x00, G: 0x00, B: 0xff, A: 0xff}, // blue
	{R: 0x00, G: 0x00, B: 0x00, A: 0xff}, // black
}

// Bars renders vertical color bars.
func Bars(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		c := bars[x*len(bars)/w]
		for y := 0; y < h; y++ {
			m.SetRGBA(x, y, c)
		}
	}
	return m
}

// Gradient renders a diagonal RGB gradient. The offset shifts the phase,
// so successive frames animate.
func Gradient(w, h, offset int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, color.RGBA{
				R: uint8(x + y + offset),
				G: uint8(x - y + offset),
				B: uint8(x + y - offset),
				A: 0xff,
			})
		}
	}
	return m
}

// Checkerboard renders a two-color checkerboard with square cells of the
// given size.
func Checkerboard(w, h, size int, a, b color.Color) *image.RGBA {
	if size < 1 {
		size = 1
	}
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/size+y/size)%2 == 0 {
				m.Set(x, y, a)
			} else {
				m.Set(x, y, b)
			}
		}
	}
	return m
}
