//go:build !linux

package framebuffer

import (
	"errors"
	"image"
	"image/color"
)

var ErrNotSupported = errors.New("framebuffer: not supported")

// Device is not supported on this platform.
type Device struct{}

func Open(_ string) (*Device, error) {
	return nil, ErrNotSupported
}

func (d *Device) Size() (width, height int) { return 0, 0 }
func (d *Device) Bounds() image.Rectangle   { return image.Rectangle{} }
func (d *Device) Write(_ int, _ []byte)     {}
func (d *Device) Fill(_ color.Color)        {}
func (d *Device) Close() error              { return nil }
