// Package pixel implements the color and image types used by the emulated
// display controllers.
//
// It provides the 16-bit 5-6-5 wire color format, its expansion to 32-bit
// RGBA, and image buffers compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces. RGBAImage doubles as the
// in-memory surface an emulated controller scans out to.
package pixel
