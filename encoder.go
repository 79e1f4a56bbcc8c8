package oregontx

import (
	"time"
)

const (
	// Clock is the half-bit period of the Oregon v2.1 signal. A whole bit
	// occupies four clocks.
	Clock    = 512 * time.Microsecond
	TwoClock = Clock * 2

	// Idle gap between the two copies of a frame.
	frameGap = TwoClock * 8
)

// OutputPin drives the data line of an on/off keyed transmitter.
type OutputPin interface {
	High()
	Low()
}

// Delayer blocks the caller for the requested duration.
type Delayer interface {
	Sleep(d time.Duration)
}

type encoder struct {
	pin   OutputPin
	delay Delayer
}

// zero is an off-to-on transition in the middle of the bit. v2.1 prefixes
// every bit with its inverse, hence the leading high clock.
func (e *encoder) zero() {
	e.pin.High()
	e.delay.Sleep(Clock)
	e.pin.Low()
	e.delay.Sleep(TwoClock)
	e.pin.High()
	e.delay.Sleep(Clock)
}

// one is an on-to-off transition in the middle of the bit.
func (e *encoder) one() {
	e.pin.Low()
	e.delay.Sleep(Clock)
	e.pin.High()
	e.delay.Sleep(TwoClock)
	e.pin.Low()
	e.delay.Sleep(Clock)
}

func (e *encoder) bit(b byte, n uint) {
	if b&(1<<n) != 0 {
		e.one()
	} else {
		e.zero()
	}
}

// lowNibble sends bits 0-3, least significant first.
func (e *encoder) lowNibble(b byte) {
	for n := uint(0); n < 4; n++ {
		e.bit(b, n)
	}
}

// highNibble sends bits 4-7, least significant first.
func (e *encoder) highNibble(b byte) {
	for n := uint(4); n < 8; n++ {
		e.bit(b, n)
	}
}

func (e *encoder) data(buf []byte) {
	for _, b := range buf {
		e.lowNibble(b)
		e.highNibble(b)
	}
}

func (e *encoder) preamble() {
	e.data([]byte{0xff, 0xff})
}

// postamble terminates a frame. The THN132N ends after a single zero
// nibble while the THGR228N sends a whole zero byte.
func (e *encoder) postamble(v Variant) {
	if v == TemperatureOnly {
		e.lowNibble(0x00)
	} else {
		e.data([]byte{0x00})
	}
}

func (e *encoder) frame(f Frame) {
	e.preamble()
	e.data(f)
	e.postamble(f.Variant())
}

// Airtime returns how long a single Send keeps the transmitter busy for the
// given variant: two frames and the gap between them.
func Airtime(v Variant) time.Duration {
	bits := 16 + 8*v.Len() + postambleBits(v)
	return 2*time.Duration(bits)*4*Clock + frameGap
}

func postambleBits(v Variant) int {
	if v == TemperatureOnly {
		return 4
	}
	return 8
}
