// Package rf connects the Oregon encoder to real or simulated hardware.
package rf

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
	"periph.io/x/periph/host/cpu"
)

var initOnce sync.Once
var initErr error

func initHost() error {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	return initErr
}

// Pin drives a GPIO connected to the data input of an on/off keyed 433MHz
// transmitter module.
//
// Pin never reports errors from High or Low. The first failure is kept and
// returned by Err; later writes are still attempted.
type Pin struct {
	pin    gpio.PinOut
	logger *zap.Logger

	lock sync.Mutex
	err  error
}

// Open looks up a pin by name (e.g. "GPIO17" or "11") and drives it low.
func Open(name string, logger *zap.Logger) (*Pin, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("Failed to initialise periph host: %v", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("No such GPIO pin: %s", name)
	}
	return NewPin(p, logger)
}

// NewPin wraps an already resolved pin and drives it low.
func NewPin(p gpio.PinOut, logger *zap.Logger) (*Pin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("Failed to set %s as output: %v", p, err)
	}
	logger.Info("Transmitter pin ready", zap.Stringer("pin", p))
	return &Pin{
		pin:    p,
		logger: logger,
	}, nil
}

func (p *Pin) out(l gpio.Level) {
	if err := p.pin.Out(l); err != nil {
		p.lock.Lock()
		defer p.lock.Unlock()
		if p.err == nil {
			p.logger.Error("Failed to drive transmitter pin", zap.Stringer("pin", p.pin), zap.Error(err))
			p.err = err
		}
	}
}

func (p *Pin) High() {
	p.out(gpio.High)
}

func (p *Pin) Low() {
	p.out(gpio.Low)
}

// Err returns the first write failure, if any.
func (p *Pin) Err() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.err
}

// Close drives the pin low and releases it.
func (p *Pin) Close() error {
	if err := p.pin.Out(gpio.Low); err != nil {
		return err
	}
	return p.pin.Halt()
}

// Spin is a busy-waiting Delayer. time.Sleep is far too coarse for 512µs
// clocks, so the calling goroutine spins for the whole duration.
type Spin struct{}

func (Spin) Sleep(d time.Duration) {
	cpu.Nanospin(d)
}
