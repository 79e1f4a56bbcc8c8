package rf

import (
	"bytes"
	"fmt"
	"sync"
	"time"
)

// Pulse is a stretch of time during which the line held one level.
type Pulse struct {
	High     bool
	Duration time.Duration
}

func (p Pulse) String() string {
	if p.High {
		return fmt.Sprintf("H%d", p.Duration.Microseconds())
	}
	return fmt.Sprintf("L%d", p.Duration.Microseconds())
}

// Recorder is both an output pin and a Delayer. Instead of toggling hardware
// and waiting it appends to a pulse trace, so a whole transmission can be
// inspected without real time passing. Consecutive periods at the same level
// are merged into a single pulse.
type Recorder struct {
	lock   sync.Mutex
	high   bool
	pulses []Pulse
	sleeps []time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) High() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.high = true
}

func (r *Recorder) Low() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.high = false
}

func (r *Recorder) Sleep(d time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sleeps = append(r.sleeps, d)
	if n := len(r.pulses); n > 0 && r.pulses[n-1].High == r.high {
		r.pulses[n-1].Duration += d
		return
	}
	r.pulses = append(r.pulses, Pulse{High: r.high, Duration: d})
}

// Pulses returns a copy of the trace so far.
func (r *Recorder) Pulses() []Pulse {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Pulse(nil), r.pulses...)
}

// Sleeps returns every requested delay in order, unmerged.
func (r *Recorder) Sleeps() []time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

// Elapsed is the virtual time spent sleeping.
func (r *Recorder) Elapsed() time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	var total time.Duration
	for _, d := range r.sleeps {
		total += d
	}
	return total
}

// IsHigh reports the current line level.
func (r *Recorder) IsHigh() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.high
}

func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.high = false
	r.pulses = nil
	r.sleeps = nil
}

// String renders the trace as space separated pulses, e.g. "H512 L1024".
func (r *Recorder) String() string {
	var b bytes.Buffer
	for i, p := range r.Pulses() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.String())
	}
	return b.String()
}

// Err is always nil; it lets a Recorder stand in for a Pin.
func (r *Recorder) Err() error {
	return nil
}
