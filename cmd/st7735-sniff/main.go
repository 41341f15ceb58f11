// Command st7735-sniff attaches an emulated ST7735 to real GPIO lines. It
// passively samples the SPI traffic of an external controller, such as a
// microcontroller running actual display firmware, and scans the emulated
// panel out to a framebuffer device, so the firmware's output is visible
// without a physical panel attached.
package main

import (
	"flag"
	"fmt"
	"os"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/emu"
	"github.com/BeatGlow/emu/conn"
	"github.com/BeatGlow/emu/framebuffer"
	"github.com/BeatGlow/emu/pixel"
)

func main() {
	csPinFlag := flag.String("cs", "GPIO8", "Chip select GPIO pin")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	rstPinFlag := flag.String("reset", "GPIO25", "Reset GPIO pin")
	sckPinFlag := flag.String("sck", "GPIO11", "Serial clock GPIO pin")
	sdaPinFlag := flag.String("sda", "GPIO10", "Serial data GPIO pin (MOSI)")
	modeFlag := flag.Int("mode", 0, "SPI mode (0-3)")
	widthFlag := flag.Int("width", 128, "Panel width")
	heightFlag := flag.Int("height", 160, "Panel height")
	fbFlag := flag.String("fb", "", "Scan out to this framebuffer device")
	flag.Parse()

	if *modeFlag < 0 || *modeFlag > 3 {
		fatal(fmt.Errorf("invalid SPI mode %d specified", *modeFlag))
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
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
		csPin  = byName(*csPinFlag)
		dcPin  = byName(*dcPinFlag)
		rstPin = byName(*rstPinFlag)
		sckPin = byName(*sckPinFlag)
		sdaPin = byName(*sdaPinFlag)
	)

	// The chip's control lines mirror the sampled hardware levels; all
	// updates are applied on the monitor's Run loop, keeping the chip
	// single-threaded.
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

	monitor, err := conn.NewMonitor(chip.Bus(), sckPin, sdaPin, conn.SPIMode(*modeFlag))
	if err != nil {
		fatal(err)
	}
	defer monitor.Close()

	// Chip select toggles realign the sampler to a byte boundary.
	if err = monitor.Notify(csPin, func(level gpio.Level) {
		monitor.Align()
		cs.Set(level)
	}); err != nil {
		fatal(err)
	}
	if err = monitor.Notify(dcPin, dc.Set); err != nil {
		fatal(err)
	}
	if err = monitor.Notify(rstPin, rst.Set); err != nil {
		fatal(err)
	}

	fmt.Println("sampling, hit control-c to stop...")
	monitor.Run()
}

func byName(name string) gpio.PinIO {
	pin := gpioreg.ByName(name)
	if pin == nil {
		fatal(fmt.Errorf("no such GPIO pin %q", name))
	}
	return pin
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
