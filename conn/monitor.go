package conn

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Monitor errors.
var (
	ErrClockPin = errors.New("conn: serial clock (SCK) pin is invalid")
	ErrDataPin  = errors.New("conn: serial data (SDA) pin is invalid")
)

// edgeTimeout bounds each WaitForEdge call so forwarders can observe
// shutdown.
const edgeTimeout = time.Second

type edge struct {
	notify func(gpio.Level)
	level  gpio.Level
}

// Monitor passively samples an SPI bus from GPIO edges and replays the
// traffic into an emulated peripheral. It watches the serial clock,
// assembles data line samples into bytes most-significant bit first, and
// writes completed bytes to the bus. Control lines registered with Notify
// are observed the same way.
//
// Every observed edge is funneled into a single channel and applied by
// Run, so the attached chip sees a fully serialized event stream in
// arrival order.
type Monitor struct {
	bus      *SPI
	sda      gpio.PinIn
	sampleOn gpio.Level

	shift byte
	nbits uint

	edges   chan edge
	closing chan struct{}
}

// NewMonitor returns a monitor sampling sck and sda into bus. The mode
// selects the clock edge the data line is sampled on, as it does for the
// master driving the bus.
func NewMonitor(bus *SPI, sck, sda gpio.PinIn, mode SPIMode) (*Monitor, error) {
	if sck == nil || sck == gpio.INVALID {
		return nil, ErrClockPin
	}
	if sda == nil || sda == gpio.INVALID {
		return nil, ErrDataPin
	}

	m := &Monitor{
		bus:      bus,
		sda:      sda,
		sampleOn: gpio.Low,
		edges:    make(chan edge, 64),
		closing:  make(chan struct{}),
	}
	// Modes 0 and 3 sample on the rising clock edge, 1 and 2 on the
	// falling edge.
	if mode == SPIMode0 || mode == SPIMode3 {
		m.sampleOn = gpio.High
	}

	if err := sda.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, err
	}
	if err := sck.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return nil, err
	}
	go m.forward(sck, m.clock)

	return m, nil
}

// Notify routes level changes on a control line to fn, serialized with the
// sampled byte stream.
func (m *Monitor) Notify(pin gpio.PinIn, fn func(gpio.Level)) error {
	if pin == nil || pin == gpio.INVALID {
		return errors.New("conn: control pin is invalid")
	}
	if err := pin.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return err
	}
	go m.forward(pin, fn)
	return nil
}

// Align discards any partially assembled byte, realigning the sampler to a
// byte boundary. Hosts call it when the chip select line toggles.
func (m *Monitor) Align() {
	m.shift, m.nbits = 0, 0
}

// Run applies observed edges in arrival order until Close is called.
func (m *Monitor) Run() {
	for {
		select {
		case <-m.closing:
			return
		case e := <-m.edges:
			e.notify(e.level)
		}
	}
}

// Close stops the monitor and its edge forwarders.
func (m *Monitor) Close() error {
	close(m.closing)
	return nil
}

// forward turns blocking edge waits on one pin into events on the shared
// channel. One forwarder goroutine runs per watched pin.
func (m *Monitor) forward(pin gpio.PinIn, notify func(gpio.Level)) {
	for {
		select {
		case <-m.closing:
			return
		default:
		}
		if !pin.WaitForEdge(edgeTimeout) {
			continue
		}
		select {
		case m.edges <- edge{notify: notify, level: pin.Read()}:
		case <-m.closing:
			return
		}
	}
}

// clock consumes serial clock edges, sampling the data line on the
// configured edge.
func (m *Monitor) clock(level gpio.Level) {
	if level != m.sampleOn {
		return
	}
	m.shift <<= 1
	if m.sda.Read() == gpio.High {
		m.shift |= 1
	}
	if m.nbits++; m.nbits == 8 {
		b := m.shift
		m.Align()
		m.bus.Write([]byte{b})
	}
}
