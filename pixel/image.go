package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

// Image is a mutable image backed by a raw pixel buffer.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is the container used by the image
// types in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// RGBAImage is a 32-bit RGBA image. It doubles as the in-memory surface an
// emulated controller writes into: Size and Write satisfy the surface
// contract of the emu package.
type RGBAImage struct {
	Buffer
}

func NewRGBAImage(w, h int) *RGBAImage {
	return &RGBAImage{
		Buffer: makeBuffer(w, h, w*4, w*4*h),
	}
}

func (p *RGBAImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *RGBAImage) PixOffset(x, y int) int {
	return y*p.Stride + x*4
}

func (p *RGBAImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	pix := p.Pix[p.PixOffset(x, y):]
	return color.RGBA{R: pix[0], G: pix[1], B: pix[2], A: pix[3]}
}

func (p *RGBAImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	v := color.RGBAModel.Convert(c).(color.RGBA)
	pix := p.Pix[p.PixOffset(x, y):]
	pix[0] = v.R
	pix[1] = v.G
	pix[2] = v.B
	pix[3] = v.A
}

func (p *RGBAImage) Fill(c color.Color) {
	v := color.RGBAModel.Convert(c).(color.RGBA)
	pix := []byte{v.R, v.G, v.B, v.A}
	for i, l := 0, len(p.Pix); i < l; i += 4 {
		copy(p.Pix[i:], pix)
	}
}

// Size returns the image dimensions in pixels.
func (p *RGBAImage) Size() (width, height int) {
	return p.Rect.Dx(), p.Rect.Dy()
}

// Write copies raw bytes into the pixel storage at the given byte offset.
// Bytes that fall outside the storage are clipped.
func (p *RGBAImage) Write(offset int, data []byte) {
	if offset < 0 || offset >= len(p.Pix) {
		return
	}
	copy(p.Pix[offset:], data)
}

// CRGB16Image is a 16-bits per pixel 5-6-5-bit RGB image laid out in wire
// order. The Order field selects the byte order of each color word; it
// defaults to little-endian, the order the emulated controllers decode.
type CRGB16Image struct {
	Buffer
	Order binary.ByteOrder
}

func NewCRGB16Image(w, h int) *CRGB16Image {
	return &CRGB16Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.LittleEndian,
	}
}

func (p *CRGB16Image) ColorModel() color.Model {
	return CRGB16Model
}

func (p *CRGB16Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	v := p.Order.Uint16(p.Pix[x*2+y*p.Stride:])
	return CRGB16{v}
}

func (p *CRGB16Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	v := crgb16Model(c).(CRGB16).V
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], v)
}

func (p *CRGB16Image) Fill(c color.Color) {
	value := crgb16Model(c).(CRGB16).V
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, value)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
}
