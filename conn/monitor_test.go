package conn

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testPin(name string) *gpiotest.Pin {
	return &gpiotest.Pin{
		N:         name,
		EdgesChan: make(chan gpio.Level, 64),
	}
}

func TestMonitorValidation(t *testing.T) {
	bus := NewSPI()
	if _, err := NewMonitor(bus, nil, testPin("SDA"), SPIMode0); err != ErrClockPin {
		t.Errorf("expected ErrClockPin, got %v", err)
	}
	if _, err := NewMonitor(bus, testPin("SCK"), nil, SPIMode0); err != ErrDataPin {
		t.Errorf("expected ErrDataPin, got %v", err)
	}
}

func TestMonitorSampling(t *testing.T) {
	var (
		bus = NewSPI()
		sck = testPin("SCK")
		sda = testPin("SDA")
		r   recorder
	)
	bus.Start(make([]byte, 4), r.done)

	m, err := NewMonitor(bus, sck, sda, SPIMode0)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	// Shift in 0xA3 most-significant bit first, toggling the data line
	// ahead of each rising clock edge. Falling edges must not sample.
	for i := 7; i >= 0; i-- {
		sda.L = gpio.Level(0xA3&(1<<uint(i)) != 0)
		m.clock(gpio.High)
		m.clock(gpio.Low)
	}

	bus.Stop()
	if len(r.payload) != 1 || r.payload[0] != 0xA3 {
		t.Errorf("expected payload [0xa3], got %#v", r.payload)
	}
}

func TestMonitorFallingEdgeMode(t *testing.T) {
	var (
		bus = NewSPI()
		sck = testPin("SCK")
		sda = testPin("SDA")
		r   recorder
	)
	bus.Start(make([]byte, 4), r.done)

	m, err := NewMonitor(bus, sck, sda, SPIMode1)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	sda.L = gpio.High
	for i := 0; i < 8; i++ {
		m.clock(gpio.High)
		m.clock(gpio.Low)
	}

	bus.Stop()
	if len(r.payload) != 1 || r.payload[0] != 0xFF {
		t.Errorf("expected payload [0xff], got %#v", r.payload)
	}
}

func TestMonitorAlign(t *testing.T) {
	var (
		bus = NewSPI()
		sck = testPin("SCK")
		sda = testPin("SDA")
		r   recorder
	)
	bus.Start(make([]byte, 4), r.done)

	m, err := NewMonitor(bus, sck, sda, SPIMode0)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	// Three stray bits, then a chip select toggle realigns the sampler;
	// the next eight edges form a clean byte.
	sda.L = gpio.High
	for i := 0; i < 3; i++ {
		m.clock(gpio.High)
		m.clock(gpio.Low)
	}
	m.Align()

	sda.L = gpio.Low
	for i := 0; i < 8; i++ {
		m.clock(gpio.High)
		m.clock(gpio.Low)
	}

	bus.Stop()
	if len(r.payload) != 1 || r.payload[0] != 0x00 {
		t.Errorf("expected payload [0x00], got %#v", r.payload)
	}
}

func TestMonitorForwarding(t *testing.T) {
	var (
		bus      = NewSPI()
		sck      = testPin("SCK")
		sda      = testPin("SDA")
		received = make(chan byte, 1)
	)
	sda.L = gpio.High
	bus.Start(make([]byte, 1), func(buf []byte, count int) {
		if count == 1 {
			received <- buf[0]
		}
	})

	m, err := NewMonitor(bus, sck, sda, SPIMode0)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	go m.Run()

	for i := 0; i < 8; i++ {
		sck.EdgesChan <- gpio.High
		sck.EdgesChan <- gpio.Low
	}

	select {
	case b := <-received:
		if b != 0xFF {
			t.Errorf("expected byte 0xff, got %#02x", b)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected a sampled byte, got none")
	}
}

func TestMonitorNotify(t *testing.T) {
	var (
		bus    = NewSPI()
		sck    = testPin("SCK")
		sda    = testPin("SDA")
		cs     = testPin("CS")
		levels = make(chan gpio.Level, 1)
	)

	m, err := NewMonitor(bus, sck, sda, SPIMode0)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err = m.Notify(nil, nil); err == nil {
		t.Error("expected an error for an invalid control pin")
	}
	if err = m.Notify(cs, func(level gpio.Level) {
		levels <- level
	}); err != nil {
		t.Fatal(err)
	}
	go m.Run()

	cs.EdgesChan <- gpio.Low
	select {
	case level := <-levels:
		if level != gpio.Low {
			t.Errorf("expected level Low, got %s", level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected a control line notification, got none")
	}
}
