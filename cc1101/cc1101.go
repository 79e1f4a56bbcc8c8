// Package cc1101 drives a TI CC1101 as a plain on/off keyed 433.92MHz
// transmitter. The chip runs in asynchronous serial mode, so whatever level
// the host puts on GDO0 goes straight out over the air.
package cc1101

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// Read/write flags.
	WRITE_SINGLE_BYTE = 0x00
	WRITE_BURST       = 0x40
	READ_SINGLE_BYTE  = 0x80
	READ_BURST        = 0xc0

	// Bitmask for reading state out of chip status byte.
	STATE = 0x70

	// Strobes
	SRES  = 0x30 // Reset
	STX   = 0x35 // Set transmit mode
	SIDLE = 0x36
	SFTX  = 0x3b // Flush TX FIFO buffer
	SNOP  = 0x3d

	// Status Registers
	PARTNUM = 0xf0
	VERSION = 0xf1

	PATABLE = 0x3e

	// Config Registers
	IOCFG2 = 0x00
	IOCFG1 = 0x01
	IOCFG0 = 0x02

	PKTCTRL1 = 0x07
	PKTCTRL0 = 0x08

	CHANNR  = 0x0a
	FSCTRL1 = 0x0b
	FSCTRL0 = 0x0c

	FREQ2 = 0x0d
	FREQ1 = 0x0e
	FREQ0 = 0x0f

	MDMCFG4 = 0x10
	MDMCFG3 = 0x11
	MDMCFG2 = 0x12
	MDMCFG1 = 0x13
	MDMCFG0 = 0x14

	DEVIATN = 0x15

	MCSM0 = 0x18

	FOCCFG = 0x19
	BSCFG  = 0x1a

	AGCCTRL2 = 0x1b
	AGCCTRL1 = 0x1c
	AGCCTRL0 = 0x1d

	FREND1 = 0x21
	FREND0 = 0x22

	FSCAL3 = 0x23
	FSCAL2 = 0x24
	FSCAL1 = 0x25
	FSCAL0 = 0x26

	FSTEST = 0x29
	TEST2  = 0x2c
	TEST1  = 0x2d
	TEST0  = 0x2e
)

type register struct {
	address byte
	value   byte
}

// 26MHz crystal, 433.92MHz carrier, ASK/OOK, no preamble or sync word.
var ookRegisters = []register{
	{FSCTRL1, 0x06},
	{FSCTRL0, 0x00},

	// 433.92MHz
	{FREQ2, 0x10},
	{FREQ1, 0xb0},
	{FREQ0, 0x71},

	{MDMCFG4, 0x87},
	{MDMCFG3, 0x32},
	// ASK/OOK, no sync.
	{MDMCFG2, 0x30},
	{MDMCFG1, 0x02},
	{MDMCFG0, 0xf8},

	{CHANNR, 0x00},
	{DEVIATN, 0x47},
	{FREND1, 0x56},
	// Use PATABLE entries 0 and 1 for OOK low and high.
	{FREND0, 0x11},
	// Calibrate on IDLE -> TX.
	{MCSM0, 0x18},
	{FOCCFG, 0x16},
	{BSCFG, 0x6c},

	{AGCCTRL2, 0x03},
	{AGCCTRL1, 0x00},
	{AGCCTRL0, 0x91},

	{FSCAL3, 0xe9},
	{FSCAL2, 0x2a},
	{FSCAL1, 0x00},
	{FSCAL0, 0x1f},

	{FSTEST, 0x59},
	{TEST2, 0x81},
	{TEST1, 0x35},
	{TEST0, 0x09},

	// Serial data output on GDO2; GDO0 is the data input in async TX.
	{IOCFG2, 0x0d},
	{IOCFG1, 0x2e},
	{IOCFG0, 0x2e},

	{PKTCTRL1, 0x00},
	// Asynchronous serial mode, infinite packet length.
	{PKTCTRL0, 0x32},
}

// Off, then +10dBm.
var ookPower = []byte{0x00, 0xc0}

// Bus is the part of an embd.SPIBus the radio needs.
type Bus interface {
	TransferAndReceiveData(data []byte) error
}

type CC1101 struct {
	bus    Bus
	logger *zap.Logger

	lock sync.Mutex
	err  error
}

func NewCC1101(bus Bus, logger *zap.Logger) *CC1101 {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CC1101{
		bus:    bus,
		logger: logger,
	}
}

// Open resets the chip, checks it is really a CC1101 and configures it for
// OOK transmission. The radio is left idle.
func (c *CC1101) Open() error {
	if err := c.Reset(); err != nil {
		return fmt.Errorf("Failed to reset CC1101: %v", err)
	}
	if err := c.SelfTest(); err != nil {
		return err
	}
	if err := c.Init(); err != nil {
		return fmt.Errorf("Failed to configure CC1101: %v", err)
	}
	return c.SetIdle()
}

func (c *CC1101) Strobe(address byte) (byte, error) {
	data := []byte{address, 0x00}
	err := c.bus.TransferAndReceiveData(data)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (c *CC1101) ReadSingleByte(address byte) (byte, error) {
	data := []byte{address | READ_SINGLE_BYTE, 0x00}
	err := c.bus.TransferAndReceiveData(data)
	if err != nil {
		return 0x00, err
	}
	return data[1], nil
}

func (c *CC1101) WriteSingleByte(address byte, in byte) error {
	data := []byte{address | WRITE_SINGLE_BYTE, in}
	return c.bus.TransferAndReceiveData(data)
}

func (c *CC1101) WriteBurst(address byte, data []byte) error {
	var buf []byte
	buf = append(buf, address|WRITE_BURST)
	buf = append(buf, data...)
	return c.bus.TransferAndReceiveData(buf)
}

func (c *CC1101) Reset() error {
	_, err := c.Strobe(SRES)
	return err
}

func (c *CC1101) Init() error {
	for _, r := range ookRegisters {
		if err := c.WriteSingleByte(r.address, r.value); err != nil {
			return fmt.Errorf("Failed to write register %#02x: %v", r.address, err)
		}
	}
	return c.WriteBurst(PATABLE, ookPower)
}

func (c *CC1101) SelfTest() error {
	version, err := c.ReadSingleByte(VERSION)
	if err != nil {
		return err
	}
	partnum, err := c.ReadSingleByte(PARTNUM)
	if err != nil {
		return err
	}
	c.logger.Debug("CC1101", zap.Uint8("version", version), zap.Uint8("partnum", partnum))

	if version != 0x14 || partnum != 0x00 {
		return fmt.Errorf("Self test failed. Got Version: 0x%x Partnum: 0x%x", version, partnum)
	}
	return nil
}

func (c *CC1101) SetState(state byte) error {
	c.logger.Debug("Setting chip state", zap.Uint8("state", state))
	_, err := c.Strobe(state)
	// Worst case state change is ~1ms for IDLE -> TX with calibration.
	time.Sleep(time.Millisecond)
	return err
}

func (c *CC1101) SetTx() error {
	return c.SetState(STX)
}

func (c *CC1101) SetIdle() error {
	return c.SetState(SIDLE)
}

func (c *CC1101) fail(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.logger.Error("CC1101 failure", zap.Error(err))
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first failure seen while switching the radio on or off.
func (c *CC1101) Err() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.err
}

// Close resets the chip, which stops any carrier.
func (c *CC1101) Close() error {
	return c.Reset()
}

type Sender interface {
	Send(humidity byte, temperature float32, batteryOK bool)
}

type ErrReporter interface {
	Err() error
}

// Transmitter keys the radio around each send. Sender must be driving the
// host pin wired to GDO0.
type Transmitter struct {
	Radio  *CC1101
	Sender Sender
	Pin    ErrReporter
}

func (t *Transmitter) Send(humidity byte, temperature float32, batteryOK bool) {
	if err := t.Radio.SetTx(); err != nil {
		t.Radio.fail(fmt.Errorf("Failed to enter TX: %v", err))
		return
	}
	t.Sender.Send(humidity, temperature, batteryOK)
	if err := t.Radio.SetIdle(); err != nil {
		t.Radio.fail(fmt.Errorf("Failed to leave TX: %v", err))
	}
}

func (t *Transmitter) Err() error {
	var pinErr error
	if t.Pin != nil {
		pinErr = t.Pin.Err()
	}
	return multierr.Combine(t.Radio.Err(), pinErr)
}
