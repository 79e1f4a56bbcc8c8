package oregontx

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hatstand/oregontx/mocks"

	. "github.com/smartystreets/goconvey/convey"
)

type step struct {
	high bool
	d    time.Duration
}

// tracer records one step per Sleep with the level the line held.
type tracer struct {
	high  bool
	steps []step
}

func (t *tracer) High()                 { t.high = true }
func (t *tracer) Low()                  { t.high = false }
func (t *tracer) Sleep(d time.Duration) { t.steps = append(t.steps, step{t.high, d}) }

var (
	zeroSteps = []step{{true, Clock}, {false, TwoClock}, {true, Clock}}
	oneSteps  = []step{{false, Clock}, {true, TwoClock}, {false, Clock}}
)

func bitSteps(bits ...int) []step {
	var ret []step
	for _, b := range bits {
		if b == 1 {
			ret = append(ret, oneSteps...)
		} else {
			ret = append(ret, zeroSteps...)
		}
	}
	return ret
}

func WithMocks(t *testing.T, f func(pin *mocks.MockOutputPin, delay *mocks.MockDelayer, e *encoder)) func() {
	return func() {
		mock := gomock.NewController(t)
		defer mock.Finish()
		pin := mocks.NewMockOutputPin(mock)
		delay := mocks.NewMockDelayer(mock)
		f(pin, delay, &encoder{pin: pin, delay: delay})
	}
}

func TestBits(t *testing.T) {
	Convey("Zero", t, WithMocks(t, func(pin *mocks.MockOutputPin, delay *mocks.MockDelayer, e *encoder) {
		gomock.InOrder(
			pin.EXPECT().High(),
			delay.EXPECT().Sleep(512*time.Microsecond),
			pin.EXPECT().Low(),
			delay.EXPECT().Sleep(1024*time.Microsecond),
			pin.EXPECT().High(),
			delay.EXPECT().Sleep(512*time.Microsecond),
		)
		e.zero()
	}))
	Convey("One", t, WithMocks(t, func(pin *mocks.MockOutputPin, delay *mocks.MockDelayer, e *encoder) {
		gomock.InOrder(
			pin.EXPECT().Low(),
			delay.EXPECT().Sleep(512*time.Microsecond),
			pin.EXPECT().High(),
			delay.EXPECT().Sleep(1024*time.Microsecond),
			pin.EXPECT().Low(),
			delay.EXPECT().Sleep(512*time.Microsecond),
		)
		e.one()
	}))
}

func TestBitOrder(t *testing.T) {
	Convey("Low nibble first, least significant bit first", t, func() {
		tr := &tracer{}
		e := &encoder{pin: tr, delay: tr}
		e.data([]byte{0x1e})
		// 0x1e: bits 0-3 = 0,1,1,1 then bits 4-7 = 1,0,0,0
		So(tr.steps, ShouldResemble, bitSteps(0, 1, 1, 1, 1, 0, 0, 0))
	})

	Convey("Every byte value", t, func() {
		for b := 0; b < 256; b++ {
			tr := &tracer{}
			e := &encoder{pin: tr, delay: tr}
			e.data([]byte{byte(b)})
			var bits []int
			for n := uint(0); n < 8; n++ {
				bits = append(bits, (b>>n)&1)
			}
			So(tr.steps, ShouldResemble, bitSteps(bits...))
		}
	})

	Convey("Nibbles", t, func() {
		tr := &tracer{}
		e := &encoder{pin: tr, delay: tr}
		e.highNibble(0xa5)
		So(tr.steps, ShouldResemble, bitSteps(0, 1, 0, 1))
		tr.steps = nil
		e.lowNibble(0xa5)
		So(tr.steps, ShouldResemble, bitSteps(1, 0, 1, 0))
	})
}

func TestFraming(t *testing.T) {
	Convey("Preamble is sixteen ones", t, func() {
		tr := &tracer{}
		e := &encoder{pin: tr, delay: tr}
		e.preamble()
		So(tr.steps, ShouldResemble, bitSteps(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1))
	})

	Convey("Postamble", t, func() {
		tr := &tracer{}
		e := &encoder{pin: tr, delay: tr}
		e.postamble(TemperatureOnly)
		So(tr.steps, ShouldResemble, bitSteps(0, 0, 0, 0))
		tr.steps = nil
		e.postamble(TemperatureHumidity)
		So(tr.steps, ShouldResemble, bitSteps(0, 0, 0, 0, 0, 0, 0, 0))
	})
}

func TestAirtime(t *testing.T) {
	Convey("Airtime", t, func() {
		// (16 + 64 + 4) bits * 2048us * 2 + 8192us
		So(Airtime(TemperatureOnly), ShouldEqual, 352256*time.Microsecond)
		// (16 + 72 + 8) bits * 2048us * 2 + 8192us
		So(Airtime(TemperatureHumidity), ShouldEqual, 401408*time.Microsecond)
	})
}
