// Package framebuffer scans an emulated panel out to the operating
// system's native framebuffer.
//
// This requires framebuffer device support in the operating system. The
// device can be opened with the [Open] call and attached to an emulated
// controller as its surface: the 32-bit RGBA cells the controller writes
// are converted to the device's native pixel format on the fly, so the
// emulated panel is visible on a real screen.
package framebuffer
