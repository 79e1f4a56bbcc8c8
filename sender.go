package oregontx

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Channel codes as carried in byte 2. The third channel is one-hot encoded.
const (
	Channel1 = 0x10
	Channel2 = 0x20
	Channel3 = 0x40
)

// ChannelCode maps a channel number as printed on the sensor to its code. It
// returns 0 for numbers other than 1, 2 and 3.
func ChannelCode(n int) byte {
	switch n {
	case 1:
		return Channel1
	case 2:
		return Channel2
	case 3:
		return Channel3
	}
	return 0
}

// Interval is the repeat period of a real sensor on the given channel code.
func Interval(channel byte) time.Duration {
	switch channel {
	case Channel2:
		return 41 * time.Second
	case Channel3:
		return 43 * time.Second
	}
	return 39 * time.Second
}

// Sender emulates a single Oregon Scientific v2.1 sensor on an output pin.
//
// The frame buffer is reused by every Send. Send and the configuration
// methods serialise on an internal lock, so the pin is held for the whole of
// a transmission.
type Sender struct {
	lock    sync.Mutex
	enc     encoder
	variant Variant
	buf     [maxFrameLen]byte
	logger  *zap.Logger
}

// NewSender returns an unconfigured sender. Configure must be called before
// Send.
func NewSender(delay Delayer, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		enc:    encoder{delay: delay},
		logger: logger,
	}
}

// Configure binds the pin and sets up the frame layout. It may be called again
// at any time to change any of them.
func (s *Sender) Configure(pin OutputPin, channel byte, id byte, humidity bool) {
	s.SetOutputPin(pin)
	s.SetSensorIDAndChannel(id, channel)
	s.SetHumidityCapable(humidity)
}

func (s *Sender) SetOutputPin(pin OutputPin) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.enc.pin = pin
}

func (s *Sender) SetSensorIDAndChannel(id byte, channel byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	f := s.frame()
	f.SetChannel(channel)
	f.SetID(id)
}

// SetHumidityCapable switches between emulating a THGR228N (true) and a
// THN132N (false). Channel and id are kept.
func (s *Sender) SetHumidityCapable(humidity bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if humidity {
		s.variant = TemperatureHumidity
	} else {
		s.variant = TemperatureOnly
	}
	s.frame().SetType(s.variant.SensorType())
}

func (s *Sender) Variant() Variant {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.variant
}

// frame is a view of the buffer sized for the current variant.
func (s *Sender) frame() Frame {
	return Frame(s.buf[:s.variant.Len()])
}

// Frame returns a copy of the frame as last sent.
func (s *Sender) Frame() Frame {
	s.lock.Lock()
	defer s.lock.Unlock()
	f := make(Frame, s.variant.Len())
	copy(f, s.frame())
	return f
}

// Send transmits one reading. Humidity is ignored when emulating a THN132N.
// The frame goes out twice with a short idle gap between the copies and the
// pin is left low. Send blocks for Airtime and cannot be interrupted.
func (s *Sender) Send(humidity byte, temperature float32, batteryOK bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	f := s.frame()
	f.SetBatteryLevel(batteryOK)
	f.SetTemperature(temperature)
	if s.variant == TemperatureHumidity {
		f.SetHumidity(humidity)
	}
	f.SetChecksum()

	s.logger.Debug("Sending Oregon frame",
		zap.Stringer("sensor", s.variant),
		zap.Stringer("frame", f),
		zap.Float32("temperature", temperature),
		zap.Uint8("humidity", humidity),
		zap.Bool("battery_ok", batteryOK))

	s.enc.frame(f)

	s.enc.pin.Low()
	s.enc.delay.Sleep(frameGap)

	// v2.1 sensors always repeat the frame.
	s.enc.frame(f)

	s.enc.pin.Low()
}
