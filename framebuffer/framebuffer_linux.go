package framebuffer

import (
	"errors"
	"image"
	"image/color"
	"os"
	"syscall"

	"github.com/BeatGlow/emu/internal/ioctl"
	"github.com/BeatGlow/emu/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// Device is a Linux framebuffer (fbdev) scan-out target. It implements the
// surface contract of the emu package: the raw RGBA cells an emulated
// controller writes are converted to the device's native pixel format.
type Device struct {
	f          *os.File
	fd         uintptr
	info       linuxFrameBufferInfo
	screenInfo linuxVarScreenInfo
	pix        []byte
	width      int
	height     int
	stride     int
	format     linuxPixelFormat
}

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb[0..x].
func Open(name string) (*Device, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	d := &Device{
		f:  f,
		fd: f.Fd(),
	}
	if err = ioctl.Do(d.fd, fbioGetFScreenInfo, &d.info); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = ioctl.Do(d.fd, fbioGetVScreenInfo, &d.screenInfo); err != nil {
		_ = f.Close()
		return nil, err
	}
	if d.format, err = linuxParsePixelFormat(&d.screenInfo); err != nil {
		_ = f.Close()
		return nil, err
	}

	if d.pix, err = syscall.Mmap(int(d.fd), 0, int(d.info.SmemLen), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED); err != nil {
		_ = f.Close()
		return nil, err
	}

	d.width = int(d.screenInfo.Xres)
	d.height = int(d.screenInfo.Yres)
	d.stride = int(d.info.LineLength)

	return d, nil
}

// Size returns the device resolution in pixels.
func (d *Device) Size() (width, height int) {
	return d.width, d.height
}

// Bounds is the device bounding box (dimensions).
func (d *Device) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Write stores RGBA cells at the given byte offset into the emulated
// panel, converting each cell to the device pixel format. Partial or
// unaligned cells and cells beyond the device resolution are dropped.
func (d *Device) Write(offset int, data []byte) {
	if offset < 0 || offset%4 != 0 {
		return
	}
	for index := offset / 4; len(data) >= 4; index, data = index+1, data[4:] {
		var (
			x = index % d.width
			y = index / d.width
		)
		if y >= d.height {
			return
		}
		d.set(x, y, data[0], data[1], data[2], data[3])
	}
}

func (d *Device) set(x, y int, r, g, b, a byte) {
	switch d.format {
	case linuxRGB565:
		v := pixel.CRGB16Model.Convert(color.RGBA{R: r, G: g, B: b, A: a}).(pixel.CRGB16).V
		pix := d.pix[y*d.stride+x*2:]
		pix[0] = byte(v)
		pix[1] = byte(v >> 8)
	case linuxBGRA8888:
		pix := d.pix[y*d.stride+x*4:]
		pix[0] = b
		pix[1] = g
		pix[2] = r
		pix[3] = a
	case linuxRGBA8888:
		pix := d.pix[y*d.stride+x*4:]
		pix[0] = r
		pix[1] = g
		pix[2] = b
		pix[3] = a
	}
}

// Fill clears the visible resolution to a single color.
func (d *Device) Fill(c color.Color) {
	v := color.RGBAModel.Convert(c).(color.RGBA)
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			d.set(x, y, v.R, v.G, v.B, v.A)
		}
	}
}

// Close the framebuffer device.
func (d *Device) Close() error {
	if err := syscall.Munmap(d.pix); err != nil {
		return err
	}
	return d.f.Close()
}

type linuxFrameBufferInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information
// about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

// linuxPixelFormat of the framebuffer.
type linuxPixelFormat int

const (
	linuxUnknownPixelFormat linuxPixelFormat = iota
	linuxRGB565
	linuxRGBA8888
	linuxBGRA8888
)

func linuxParsePixelFormat(info *linuxVarScreenInfo) (linuxPixelFormat, error) {
	if info == nil {
		return linuxUnknownPixelFormat, errors.New("framebuffer: invalid VarScreenInfo")
	}

	switch info.BitsPerPixel {
	case 16:
		if info.Blue.Offset == 0 &&
			info.Blue.Length == 5 &&
			info.Green.Offset == 5 &&
			info.Green.Length == 6 &&
			info.Red.Offset == 11 &&
			info.Red.Length == 5 &&
			info.Alpha.Length == 0 {
			return linuxRGB565, nil
		}

	case 32:
		switch {
		case info.Blue.Offset == 0 &&
			info.Green.Offset == 8 &&
			info.Red.Offset == 16:
			return linuxBGRA8888, nil

		case info.Red.Offset == 0 &&
			info.Green.Offset == 8 &&
			info.Blue.Offset == 16:
			return linuxRGBA8888, nil
		}
	}

	return linuxUnknownPixelFormat, errors.New("framebuffer: unsupported pixel format")
}
