package emu

import (
	"encoding/binary"
	"fmt"
	"image"
	"log"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/emu/conn"
	"github.com/BeatGlow/emu/pixel"
)

const (
	st7735DefaultWidth  = 128
	st7735DefaultHeight = 160
)

// Registers (from st7735.pdf). Only the subset below is interpreted; every
// other opcode is reported and skipped.
const (
	st7735NOP    = 0x00
	st7735CASET  = 0x2A
	st7735RASET  = 0x2B
	st7735RAMWR  = 0x2C
	st7735RAMRD  = 0x2E
	st7735MADCTL = 0x36
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7735DisplayDataLatchOrder                  // D2: MH
	st7735RGBOrder                               // D3: RGB
	st7735LineAddressOrder                       // D4: ML
	st7735PageColumnOrder                        // D5: MV, swaps row/column addressing
	st7735ColumnAddressOrder                     // D6: MX, horizontal mirror
	st7735PageAddressOrder                       // D7: MY, vertical mirror
)

// Power-on addressing window. The row window is deliberately narrow and is
// overwritten by the first RASET of any sane host sequence; until then only
// part of the panel is addressable.
const (
	st7735ResetColumnEnd = 127
	st7735ResetRowEnd    = 35
)

// mode selects how incoming bytes are classified, driven by the DC line.
type mode int

const (
	modeCommand mode = iota // DC low
	modeData                // DC high
)

func (m mode) String() string {
	if m == modeData {
		return "data"
	}
	return "command"
}

func modeFromLevel(level gpio.Level) mode {
	if level == gpio.High {
		return modeData
	}
	return modeCommand
}

// maxCommandArgs is the widest argument set any interpreted opcode takes.
const maxCommandArgs = 4

// st7735Command describes one interpreted opcode: the number of argument
// bytes buffered before exec runs.
type st7735Command struct {
	args int
	exec func(*ST7735)
}

var st7735Commands = map[byte]st7735Command{
	st7735NOP:    {0, func(*ST7735) {}},
	st7735RAMWR:  {0, (*ST7735).ramwr},
	st7735MADCTL: {1, (*ST7735).madctl},
	st7735CASET:  {4, (*ST7735).caset},
	st7735RASET:  {4, (*ST7735).raset},
}

func init() {
	for code, cmd := range st7735Commands {
		if cmd.args > maxCommandArgs {
			panic(fmt.Sprintf("st7735: command %#02x takes %d argument bytes, limit is %d", code, cmd.args, maxCommandArgs))
		}
	}
}

// Config is the emulated chip configuration.
type Config struct {
	// ChipSelect is the CS line, active low.
	ChipSelect Pin

	// DataCommand is the DC line: low selects command bytes, high data.
	DataCommand Pin

	// Reset is the RST line, active low.
	Reset Pin

	// BufferSize overrides the transport receive buffer size.
	BufferSize int
}

// ST7735 emulates the command and addressing core of an ST7735 TFT
// controller. It senses the CS, DC and RST lines, receives the byte stream
// a driver shifts out over SPI, and writes decoded 16-bit colors into its
// surface as 32-bit RGBA cells.
type ST7735 struct {
	surface Surface
	width   int
	height  int

	cs  Pin
	dc  Pin
	rst Pin
	bus *conn.SPI
	buf []byte

	mode     mode
	op       byte   // pending opcode
	argc     int    // argument bytes the pending opcode still expects
	args     []byte // accumulated argument bytes
	ramWrite bool
	scan     byte // MADCTL scanning direction bits
	col, row window
}

// NewST7735 returns an emulated chip attached to the given surface and
// control lines. A nil surface allocates an in-memory RGBA surface with
// the chip's native dimensions.
//
// The chip registers watchers on all three lines and, when CS is already
// active, immediately arms reception on its bus.
func NewST7735(surface Surface, config *Config) (*ST7735, error) {
	if config == nil {
		config = new(Config)
	}
	if config.ChipSelect == nil {
		return nil, ErrChipSelectPin
	}
	if config.DataCommand == nil {
		return nil, ErrDataCommandPin
	}
	if config.Reset == nil {
		return nil, ErrResetPin
	}
	if surface == nil {
		surface = pixel.NewRGBAImage(st7735DefaultWidth, st7735DefaultHeight)
	}

	size := config.BufferSize
	if size <= 0 {
		size = conn.DefaultBufferSize
	}

	c := &ST7735{
		surface: surface,
		cs:      config.ChipSelect,
		dc:      config.DataCommand,
		rst:     config.Reset,
		bus:     conn.NewSPI(),
		buf:     make([]byte, size),
		args:    make([]byte, 0, maxCommandArgs),
	}
	c.width, c.height = surface.Size()
	c.mode = modeFromLevel(c.dc.Read())
	c.reset()

	c.cs.Watch(c.chipSelect)
	c.dc.Watch(c.dataCommand)
	c.rst.Watch(c.resetLine)
	if c.cs.Read() == gpio.Low {
		c.bus.Start(c.buf, c.receive)
	}

	if debug {
		log.Printf("st7735: emulating %dx%d surface", c.width, c.height)
	}
	return c, nil
}

func (c *ST7735) String() string {
	return fmt.Sprintf("ST7735 %dx%d", c.width, c.height)
}

// Bounds is the emulated panel bounding box (dimensions).
func (c *ST7735) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Surface returns the surface the chip writes into.
func (c *ST7735) Surface() Surface {
	return c.surface
}

// Bus returns the peripheral end of the chip's SPI link. Hosts write the
// driver byte stream into it.
func (c *ST7735) Bus() *conn.SPI {
	return c.bus
}

// reset restores the power-on state, discarding any in-flight command or
// pixel stream.
func (c *ST7735) reset() {
	c.op = 0
	c.argc = 0
	c.args = c.args[:0]
	c.ramWrite = false
	c.scan = 0
	c.col.set(0, st7735ResetColumnEnd)
	c.row.set(0, st7735ResetRowEnd)
}

// chipSelect reacts to the CS line. Going active arms reception; going
// inactive flushes whatever the transport already captured. Command state
// survives deselection so a transfer may span CS toggles.
func (c *ST7735) chipSelect(level gpio.Level) {
	if level == gpio.Low {
		c.bus.Start(c.buf, c.receive)
	} else {
		c.bus.Stop()
	}
}

// dataCommand reacts to the DC line. In-flight reception is flushed under
// the old regime before the new one applies, so command bytes and pixel
// payload interleave only at buffer boundaries, never mid-opcode.
func (c *ST7735) dataCommand(level gpio.Level) {
	m := modeFromLevel(level)
	if c.mode == m {
		return
	}
	selected := c.cs.Read() == gpio.Low
	if selected {
		c.bus.Stop()
	}
	c.mode = m
	if selected {
		c.bus.Start(c.buf, c.receive)
	}
}

// resetLine reacts to the RST line (active low). Pending reception is
// flushed under the outgoing state before the chip returns to power-on
// defaults.
func (c *ST7735) resetLine(level gpio.Level) {
	if level != gpio.Low {
		return
	}
	c.bus.Stop()
	c.reset()
	if debug {
		log.Print("st7735: reset")
	}
}

// receive handles one delivered transport buffer. A zero count is the
// benign completion of a flush with nothing pending.
func (c *ST7735) receive(buf []byte, count int) {
	if count == 0 {
		return
	}

	data := buf[:count]
	if c.mode == modeData {
		if c.ramWrite {
			c.writePixels(data)
		} else {
			c.writeArguments(data)
		}
	} else {
		c.writeCommands(data)
	}

	if c.cs.Read() == gpio.Low {
		c.bus.Start(c.buf, c.receive)
	}
}

// writeCommands consumes COMMAND-mode bytes. Every byte starts a new
// opcode and terminates an active RAM write; argument bytes for the opcode
// arrive in DATA mode. Zero-argument opcodes execute immediately.
func (c *ST7735) writeCommands(data []byte) {
	for _, op := range data {
		c.ramWrite = false
		c.op = op
		c.args = c.args[:0]

		cmd, ok := st7735Commands[op]
		if !ok {
			c.argc = 0
			log.Printf("st7735: unknown command %#02x", op)
			continue
		}
		c.argc = cmd.args
		if c.argc == 0 {
			c.execute(cmd)
		}
	}
}

// writeArguments accumulates DATA-mode bytes for the pending opcode and
// executes it once the argument set is full. Surplus bytes are discarded
// until the next opcode.
func (c *ST7735) writeArguments(data []byte) {
	for _, arg := range data {
		if len(c.args) >= c.argc {
			continue
		}
		if c.args = append(c.args, arg); len(c.args) == c.argc {
			c.execute(st7735Commands[c.op])
		}
	}
}

func (c *ST7735) execute(cmd st7735Command) {
	if debug {
		log.Printf("st7735: command %#02x args [% x]", c.op, c.args)
	}
	cmd.exec(c)
}

func (c *ST7735) ramwr() {
	c.ramWrite = true
}

// madctl latches the scanning direction bits. The low two bits of the
// argument are reserved and masked off.
func (c *ST7735) madctl() {
	c.scan = c.args[0] &^ 0x03
}

func (c *ST7735) caset() { c.setAddressWindow(false) }
func (c *ST7735) raset() { c.setAddressWindow(true) }

// setAddressWindow applies a CASET or RASET argument set: two big-endian
// 16-bit values, window start then window end. When the MV bit is set the
// logical row/column axes are remapped to the opposite physical axis, so a
// RASET lands on the column window and vice versa.
func (c *ST7735) setAddressWindow(row bool) {
	start := int(binary.BigEndian.Uint16(c.args[0:2]))
	end := int(binary.BigEndian.Uint16(c.args[2:4]))
	if c.swapped() {
		row = !row
	}
	if row {
		c.row.set(start, end)
	} else {
		c.col.set(start, end)
	}
}

func (c *ST7735) swapped() bool {
	return c.scan&st7735PageColumnOrder != 0
}

// writePixels streams RAM-write payload into the surface. Color words are
// decoded little-endian from the wire; a trailing odd byte is dropped.
//
// The cursor pair addresses the logical window; the MADCTL bits decide the
// physical cell. MX mirrors and MY mirrors trade meaning when MV is set,
// and MV also selects the row axis as the fast raster axis. Coordinates
// are not bounds-checked here: the surface clips, like the real RAM array
// the cursor wraps inside.
func (c *ST7735) writePixels(data []byte) {
	var cell [4]byte
	for ; len(data) >= 2; data = data[2:] {
		x, y := c.col.cursor, c.row.cursor
		if c.swapped() {
			if c.scan&st7735ColumnAddressOrder != 0 {
				x = c.width - 1 - x
			}
			if c.scan&st7735PageAddressOrder != 0 {
				y = c.height - 1 - y
			}
		} else {
			if c.scan&st7735PageAddressOrder != 0 {
				x = c.width - 1 - x
			}
			if c.scan&st7735ColumnAddressOrder != 0 {
				y = c.height - 1 - y
			}
		}

		binary.LittleEndian.PutUint32(cell[:], pixel.RGBA32(binary.LittleEndian.Uint16(data)))
		c.surface.Write((y*c.width+x)*4, cell[:])

		if c.swapped() {
			advance(&c.row, &c.col)
		} else {
			advance(&c.col, &c.row)
		}
	}
}
