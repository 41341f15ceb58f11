// Package emu contains emulators for hardware display controllers.
//
// Where its sister module drives real panels, this module emulates the
// controller side of the link: an emulated chip senses its control lines,
// receives the raw byte stream a driver shifts out over SPI, and renders
// the decoded pixels into a surface. Driver code can then be exercised,
// inspected and regression-tested without any hardware attached.
package emu

import (
	"errors"
	"os"
)

var debug bool

func init() {
	debug = os.Getenv("EMU_DEBUG") != ""
}

// Errors
var (
	ErrChipSelectPin  = errors.New("emu: chip select (CS) pin is invalid")
	ErrDataCommandPin = errors.New("emu: data/command (DC) pin is invalid")
	ErrResetPin       = errors.New("emu: reset (RST) pin is invalid")
)

// Surface is the memory an emulated controller scans pixels out to. The
// dimensions are fixed for the lifetime of the surface.
//
// Write stores raw bytes at a byte offset. Implementations clip writes
// that fall outside their storage; the controllers in this package do not
// validate coordinates before writing, mirroring the real chips.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Write stores raw bytes at the given byte offset.
	Write(offset int, data []byte)
}
