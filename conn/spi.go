// Package conn implements the transport endpoints of an emulated serial
// bus: the peripheral end of an SPI link, and a passive GPIO monitor that
// replays real bus traffic into it.
package conn

// Definitions from <spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

type SPIMode uint8

const (
	SPIMode0 SPIMode = (0 | 0)             //nolint:staticcheck
	SPIMode1 SPIMode = (0 | spiCPHA)       //nolint:staticcheck
	SPIMode2 SPIMode = (spiCPOL | 0)       //nolint:staticcheck
	SPIMode3 SPIMode = (spiCPOL | spiCPHA) //nolint:staticcheck
)

// DefaultBufferSize is the reference receive buffer sizing.
const DefaultBufferSize = 1024

// SPI emulates the peripheral end of an SPI link.
//
// The peripheral arms reception with Start, pointing the link at a
// caller-supplied buffer. The master shifts bytes in with Write. When the
// buffer fills, the done callback delivers it together with the byte
// count; Stop flushes a partial buffer through the same callback, possibly
// with a count of zero. The callback may re-arm reception by calling Start
// again, so a master write larger than the buffer is delivered in slices.
//
// SPI is not safe for concurrent use; both ends of the link are expected
// to live on one event loop.
type SPI struct {
	buf       []byte
	n         int
	done      func(buf []byte, count int)
	receiving bool
}

func NewSPI() *SPI {
	return new(SPI)
}

// Start arms reception into buf. Re-arming discards any progress in the
// previous buffer without delivering it.
func (s *SPI) Start(buf []byte, done func(buf []byte, count int)) {
	s.buf = buf
	s.n = 0
	s.done = done
	s.receiving = len(buf) > 0 && done != nil
}

// Stop disarms reception and flushes the partial buffer through the done
// callback with whatever count was accumulated, possibly zero. Stopping a
// link that is not armed is a no-op.
func (s *SPI) Stop() {
	if !s.receiving {
		return
	}
	s.receiving = false
	s.deliver()
}

// Receiving reports whether reception is armed.
func (s *SPI) Receiving() bool {
	return s.receiving
}

// Write shifts bytes in from the master side. Bytes that arrive while
// reception is disarmed fall on the floor, as on a deselected chip. The
// returned count always covers the full slice.
func (s *SPI) Write(p []byte) (int, error) {
	for i := 0; i < len(p); {
		if !s.receiving {
			break
		}
		n := copy(s.buf[s.n:], p[i:])
		s.n += n
		i += n
		if s.n == len(s.buf) {
			s.receiving = false
			s.deliver()
		}
	}
	return len(p), nil
}

func (s *SPI) deliver() {
	done, buf, count := s.done, s.buf, s.n
	s.n = 0
	done(buf, count)
}
