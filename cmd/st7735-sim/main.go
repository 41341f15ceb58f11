// Command st7735-sim drives an emulated ST7735 the way a display driver
// would: it toggles the control lines, shifts a command stream and a
// 16-bit pixel stream through the SPI link, and saves the resulting panel
// contents as a PNG, or scans them out to a framebuffer device.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/golang/freetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/emu"
	"github.com/BeatGlow/emu/conn"
	"github.com/BeatGlow/emu/framebuffer"
	"github.com/BeatGlow/emu/pattern"
	"github.com/BeatGlow/emu/pixel"
)

// ST7735 opcodes the demo sends. Only the addressing subset is
// interpreted by the emulator; the others are reported and skipped, as on
// first bring-up of a real driver.
const (
	cmdSLPOUT = 0x11
	cmdDISPON = 0x29
	cmdCASET  = 0x2A
	cmdRASET  = 0x2B
	cmdRAMWR  = 0x2C
	cmdMADCTL = 0x36
	cmdCOLMOD = 0x3A
)

// MADCTL values per quarter rotation, matching the usual driver tables.
var rotations = map[int]byte{
	0:   0x00,
	90:  0x60, // MX|MV
	180: 0xC0, // MX|MY
	270: 0xA0, // MY|MV
}

// driver is the master end of the link: it toggles DC around opcode and
// payload bytes exactly like a hardware SPI driver does.
type driver struct {
	cs  *emu.SignalPin
	dc  *emu.SignalPin
	bus *conn.SPI
}

func (d *driver) command(cmnd byte, data ...byte) {
	d.cs.Set(gpio.Low)
	d.dc.Set(gpio.Low)
	d.bus.Write([]byte{cmnd})
	if len(data) > 0 {
		d.dc.Set(gpio.High)
		d.bus.Write(data)
	}
	d.cs.Set(gpio.High)
}

func (d *driver) data(data []byte) {
	d.dc.Set(gpio.High)
	d.cs.Set(gpio.Low)
	d.bus.Write(data)
	d.cs.Set(gpio.High)
}

func main() {
	widthFlag := flag.Int("width", 128, "Panel width")
	heightFlag := flag.Int("height", 160, "Panel height")
	rotateFlag := flag.Int("rotate", 0, "Rotation in degrees (0, 90, 180, 270)")
	patternFlag := flag.String("pattern", "bars", "Test pattern (bars, gradient, checker)")
	textFlag := flag.String("text", "BeatGlow", "Overlay text")
	fontFlag := flag.String("font", "", "TrueType font file for the overlay text")
	fbFlag := flag.String("fb", "", "Scan out to this framebuffer device instead of writing a PNG")
	outFlag := flag.String("out", "st7735.png", "PNG output path")
	scaleFlag := flag.Int("scale", 4, "PNG upscale factor")
	flag.Parse()

	madctl, ok := rotations[*rotateFlag]
	if !ok {
		fatal(fmt.Errorf("invalid rotation %d specified", *rotateFlag))
	}

	var surface emu.Surface
	if *fbFlag != "" {
		fb, err := framebuffer.Open(*fbFlag)
		if err != nil {
			fatal(err)
		}
		defer fb.Close()
		surface = fb
	} else {
		surface = pixel.NewRGBAImage(*widthFlag, *heightFlag)
	}

	var (
		cs  = emu.NewSignalPin(gpio.High)
		dc  = emu.NewSignalPin(gpio.Low)
		rst = emu.NewSignalPin(gpio.High)
	)
	chip, err := emu.NewST7735(surface, &emu.Config{
		ChipSelect:  cs,
		DataCommand: dc,
		Reset:       rst,
	})
	if err != nil {
		fatal(err)
	}
	fmt.Printf("emulating: %s\n", chip)

	// Pulse reset, then run a condensed driver init sequence.
	rst.Set(gpio.Low)
	rst.Set(gpio.High)

	d := &driver{cs: cs, dc: dc, bus: chip.Bus()}
	d.command(cmdSLPOUT)
	d.command(cmdCOLMOD, 0x05) // 16-bits per pixel
	d.command(cmdMADCTL, madctl)
	d.command(cmdDISPON)

	// The logical raster dimensions swap for quarter rotations; the chip
	// remaps the address windows back to the physical axes via MADCTL.
	width, height := *widthFlag, *heightFlag
	if *rotateFlag == 90 || *rotateFlag == 270 {
		width, height = height, width
	}

	frame := renderFrame(width, height, *patternFlag, *textFlag, *fontFlag)
	stream := pixel.NewCRGB16Image(width, height)
	draw.Draw(stream, stream.Bounds(), frame, image.Point{}, draw.Src)

	d.command(cmdCASET,
		0x00, 0x00,
		byte((width-1)>>8), byte(width-1))
	d.command(cmdRASET,
		0x00, 0x00,
		byte((height-1)>>8), byte(height-1))
	d.command(cmdRAMWR)
	d.data(stream.Pix)

	if *fbFlag != "" {
		return
	}

	out, err := os.Create(*outFlag)
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	var (
		panel  = surface.(*pixel.RGBAImage)
		scaled = image.NewRGBA(image.Rect(0, 0, *widthFlag**scaleFlag, *heightFlag**scaleFlag))
	)
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), panel, panel.Bounds(), xdraw.Src, nil)
	if err = png.Encode(out, scaled); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", *outFlag)
}

// renderFrame composes the test pattern with the overlay text.
func renderFrame(width, height int, name, text, fontPath string) *image.RGBA {
	var frame *image.RGBA
	switch name {
	case "bars":
		frame = pattern.Bars(width, height)
	case "gradient":
		frame = pattern.Gradient(width, height, 0)
	case "checker":
		frame = pattern.Checkerboard(width, height, 8, image.White, image.Black)
	default:
		fatal(fmt.Errorf("unsupported pattern %q", name))
	}
	if text == "" {
		return frame
	}

	if fontPath == "" {
		drawer := font.Drawer{
			Dst:  frame,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, height-8),
		}
		drawer.DrawString(text)
		return frame
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		fatal(err)
	}
	ttf, err := freetype.ParseFont(data)
	if err != nil {
		fatal(err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(13)
	ctx.SetClip(frame.Bounds())
	ctx.SetDst(frame)
	ctx.SetSrc(image.White)
	if _, err = ctx.DrawString(text, freetype.Pt(4, height-8)); err != nil {
		fatal(err)
	}
	return frame
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
