package emu

import (
	"periph.io/x/conn/v3/gpio"
)

// Pin is a digital control line sensed by an emulated chip. It is the
// emulated counterpart of [gpio.PinIn]: the chip reads the current level
// and registers a watcher that fires on every level change.
type Pin interface {
	// Read returns the current level.
	Read() gpio.Level

	// Watch registers a callback invoked on each level change.
	Watch(func(gpio.Level))
}

// SignalPin is a host-controlled control line. The host drives the level
// with Set; the attached chip observes it through the Pin interface.
//
// Watchers run synchronously on the goroutine that calls Set, so a host
// that drives all of a chip's lines from a single goroutine gets the fully
// serialized event model the controllers rely on.
type SignalPin struct {
	level    gpio.Level
	watchers []func(gpio.Level)
}

// NewSignalPin returns a line resting at the given level.
func NewSignalPin(level gpio.Level) *SignalPin {
	return &SignalPin{level: level}
}

func (p *SignalPin) Read() gpio.Level {
	return p.level
}

func (p *SignalPin) Watch(watch func(gpio.Level)) {
	p.watchers = append(p.watchers, watch)
}

// Set drives the line to the given level. Watchers are notified only when
// the level actually changes.
func (p *SignalPin) Set(level gpio.Level) {
	if p.level == level {
		return
	}
	p.level = level
	for _, watch := range p.watchers {
		watch(level)
	}
}
