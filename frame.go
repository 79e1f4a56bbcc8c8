package oregontx

import (
	"encoding/hex"
	"math"
)

// Variant selects which physical sensor is emulated.
type Variant int

const (
	// TemperatureOnly emulates a THN132N.
	TemperatureOnly Variant = iota
	// TemperatureHumidity emulates a THGR228N.
	TemperatureHumidity
)

const maxFrameLen = 9

var sensorTypes = map[Variant][2]byte{
	TemperatureOnly:     {0xea, 0x4c},
	TemperatureHumidity: {0x1a, 0x2d},
}

func (v Variant) Len() int {
	if v == TemperatureHumidity {
		return 9
	}
	return 8
}

func (v Variant) SensorType() [2]byte {
	return sensorTypes[v]
}

func (v Variant) String() string {
	if v == TemperatureHumidity {
		return "THGR228N"
	}
	return "THN132N"
}

// Frame is the payload of one Oregon v2.1 message. Numeric fields are
// stored as decimal digits, one per nibble.
//
// None of the setters validate their input: out of range values still
// produce a well formed frame with a valid checksum.
type Frame []byte

// NewFrame allocates a frame for v with its sensor type set.
func NewFrame(v Variant) Frame {
	f := make(Frame, v.Len())
	f.SetType(v.SensorType())
	return f
}

// Variant is derived from the frame length.
func (f Frame) Variant() Variant {
	if len(f) == TemperatureHumidity.Len() {
		return TemperatureHumidity
	}
	return TemperatureOnly
}

func (f Frame) SetType(t [2]byte) {
	f[0] = t[0]
	f[1] = t[1]
}

func (f Frame) SetChannel(channel byte) {
	f[2] = channel
}

func (f Frame) Channel() byte {
	return f[2]
}

func (f Frame) SetID(id byte) {
	f[3] = id
}

func (f Frame) ID() byte {
	return f[3]
}

// SetBatteryLevel overwrites byte 4, so it must run before SetTemperature.
func (f Frame) SetBatteryLevel(ok bool) {
	if ok {
		f[4] = 0x00
	} else {
		f[4] = 0x0c
	}
}

// SetTemperature encodes temp as sign, tens, units and tenths digits. Byte 6
// is overwritten with the sign flag, clearing whatever a previous humidity or
// checksum left in its high nibble.
//
// The arithmetic is carried out on 32-bit floats, rounding at each step, so
// boundary values such as x.95 encode exactly as on 8-bit microcontrollers.
func (f Frame) SetTemperature(temp float32) {
	if temp < 0 {
		f[6] = 0x08
		temp *= -1
	} else {
		f[6] = 0x00
	}

	tempInt := int(temp)
	td := tempInt / 10
	// Recovering the units digit through the division keeps the float32
	// rounding; tempInt%10 does not.
	r := float32(float32(tempInt)/10) - float32(td)
	tf := int(math.Round(float64(r * 10)))
	frac := float32(temp - float32(tempInt))
	tempFloat := int(math.Round(float64(frac * 10)))

	f[5] = byte(td << 4)
	f[5] |= byte(tf)
	f[4] |= byte(tempFloat << 4)
}

// SetHumidity writes the tens digit to byte 7 and ORs the units digit into the
// high nibble of byte 6. It must follow SetTemperature.
func (f Frame) SetHumidity(hum byte) {
	f[7] = hum / 10
	f[6] |= (hum - f[7]*10) << 4
}

func (f Frame) String() string {
	return hex.EncodeToString(f)
}
