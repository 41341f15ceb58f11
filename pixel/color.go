package pixel

import "image/color"

// CRGB16Model is the color model for the CRGB16 type.
var CRGB16Model color.Model = color.ModelFunc(crgb16Model)

// CRGB16 represents a 16-bit 5-6-5 RGB color, the wire format 16-bit
// panels receive pixel data in.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	// Build a 5- or 6-bit value at the top of the low byte of each component.
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Duplicate the high bits in the low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	// Duplicate the whole value in the high byte.
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

func crgb16Model(c color.Color) color.Color {
	if c, ok := c.(CRGB16); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	r = (r & 0xF800)
	g = (g & 0xFC00) >> 5
	b = (b & 0xF800) >> 11
	return CRGB16{uint16(r | g | b)}
}

// RGBA32 converts a packed 5-6-5 color to a 32-bit RGBA value with the red
// channel in the low byte and full opacity in the high byte; written
// little-endian the bytes come out in R, G, B, A order. Each channel is
// widened to 8 bits by replicating its high bits into the low-order
// positions, the same expansion the panel hardware applies, so full-scale
// channels map to 0xFF rather than the truncated shift value.
func RGBA32(v uint16) uint32 {
	r := uint32(v&0xF800) >> 8
	g := uint32(v&0x07E0) >> 3
	b := uint32(v&0x001F) << 3
	r |= r >> 5
	g |= g >> 6
	b |= b >> 5
	return 0xff000000 | b<<16 | g<<8 | r
}
