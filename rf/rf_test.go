package rf

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"

	. "github.com/smartystreets/goconvey/convey"
)

type brokenPin struct {
	gpiotest.Pin
	writes int
}

func (p *brokenPin) Out(l gpio.Level) error {
	p.writes++
	if p.writes > 1 {
		return errors.New("write failed")
	}
	return p.Pin.Out(l)
}

func TestPin(t *testing.T) {
	Convey("Drives the line", t, func() {
		g := &gpiotest.Pin{N: "GPIO17", L: gpio.High}
		p, err := NewPin(g, nil)
		So(err, ShouldBeNil)
		So(g.Read(), ShouldEqual, gpio.Low)

		p.High()
		So(g.Read(), ShouldEqual, gpio.High)
		p.Low()
		So(g.Read(), ShouldEqual, gpio.Low)
		So(p.Err(), ShouldBeNil)
		So(p.Close(), ShouldBeNil)
	})

	Convey("Keeps the first write error", t, func() {
		g := &brokenPin{Pin: gpiotest.Pin{N: "GPIO17"}}
		p, err := NewPin(g, nil)
		So(err, ShouldBeNil)

		p.High()
		p.Low()
		So(p.Err(), ShouldNotBeNil)
		So(p.Err().Error(), ShouldEqual, "write failed")
		So(g.writes, ShouldEqual, 3)
	})
}

func TestRecorder(t *testing.T) {
	Convey("Merges equal levels", t, func() {
		r := NewRecorder()
		r.High()
		r.Sleep(512 * time.Microsecond)
		r.Low()
		r.Sleep(1024 * time.Microsecond)
		r.High()
		r.Sleep(512 * time.Microsecond)
		r.High()
		r.Sleep(512 * time.Microsecond)

		So(r.Pulses(), ShouldResemble, []Pulse{
			{High: true, Duration: 512 * time.Microsecond},
			{High: false, Duration: 1024 * time.Microsecond},
			{High: true, Duration: 1024 * time.Microsecond},
		})
		So(len(r.Sleeps()), ShouldEqual, 4)
		So(r.Elapsed(), ShouldEqual, 2560*time.Microsecond)
		So(r.IsHigh(), ShouldBeTrue)
		So(r.String(), ShouldEqual, "H512 L1024 H1024")
	})

	Convey("Reset", t, func() {
		r := NewRecorder()
		r.High()
		r.Sleep(time.Millisecond)
		r.Reset()
		So(r.Pulses(), ShouldBeEmpty)
		So(r.Elapsed(), ShouldEqual, 0)
		So(r.IsHigh(), ShouldBeFalse)
		So(r.Err(), ShouldBeNil)
	})
}

func TestSpin(t *testing.T) {
	Convey("Spins for at least the requested time", t, func() {
		start := time.Now()
		Spin{}.Sleep(2 * time.Millisecond)
		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 2*time.Millisecond)
	})
}

func TestChart(t *testing.T) {
	Convey("Waveform steps", t, func() {
		x, y := Waveform([]Pulse{{High: true, Duration: 512 * time.Microsecond}, {High: false, Duration: 1024 * time.Microsecond}})
		So(x, ShouldResemble, []float64{0, 512, 512, 1536})
		So(y, ShouldResemble, []float64{1, 1, 0, 0})
	})

	Convey("Renders a PNG", t, func() {
		r := NewRecorder()
		r.High()
		r.Sleep(512 * time.Microsecond)
		r.Low()
		r.Sleep(1024 * time.Microsecond)
		r.High()
		r.Sleep(512 * time.Microsecond)

		var b bytes.Buffer
		So(r.Chart("zero", &b), ShouldBeNil)
		So(b.Bytes()[:4], ShouldResemble, []byte("\x89PNG"))
	})
}
