package sht31

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/hatstand/oregontx/source"
	"github.com/sigurn/crc8"
)

const (
	DEFAULT_ADDR = 0x44
	READ_STATUS  = 0xf32d
	CLEAR_STATUS = 0x3041
	SOFT_RESET   = 0x30a2

	MEAS_HIGHREP = 0x2400
)

// High repeatability measurements take up to 15ms.
const measurementTime = 20 * time.Millisecond

var (
	// See SHT3x datasheet; section 4.12.
	CRC8_PARAMS = crc8.Params{Poly: 0x31, Init: 0xff, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xf7, Name: "CRC-8/SHT3x"}
	CRC8_TABLE  = crc8.MakeTable(CRC8_PARAMS)
)

func crc(data []byte) byte {
	return crc8.Checksum(data, CRC8_TABLE)
}

func convertTemperature(raw uint16) float32 {
	return -45 + 175*(float32(raw)/((1<<16)-1))
}

func convertHumidity(raw uint16) float32 {
	return 100 * (float32(raw) / ((1 << 16) - 1))
}

// Bus is the part of an embd.I2CBus the sensor needs.
type Bus interface {
	WriteByteToReg(addr, reg, value byte) error
	ReadBytes(addr byte, num int) ([]byte, error)
}

type SHT31 struct {
	bus     Bus
	address byte
	lock    sync.Mutex
}

func NewSHT31(bus Bus, address byte) *SHT31 {
	return &SHT31{
		bus:     bus,
		address: address,
	}
}

func (s *SHT31) Init() error {
	if err := s.writeCommand(SOFT_RESET); err != nil {
		return fmt.Errorf("Failed to reset SHT31: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (s *SHT31) writeCommand(command uint16) error {
	return s.bus.WriteByteToReg(s.address, byte(command>>8), byte(command&0xff))
}

func (s *SHT31) ReadStatus() (uint16, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.writeCommand(READ_STATUS); err != nil {
		return 0, fmt.Errorf("Failed to request status: %v", err)
	}
	status, err := s.bus.ReadBytes(s.address, 3)
	if err != nil {
		return 0, fmt.Errorf("Failed to read status: %v", err)
	}
	if len(status) != 3 || crc(status[:2]) != status[2] {
		return 0, fmt.Errorf("CRC check failed for status")
	}
	return binary.BigEndian.Uint16(status[:2]), nil
}

// ReadTempAndHum returns temperature in degrees Celsius and relative humidity
// in percent.
func (s *SHT31) ReadTempAndHum() (float32, float32, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := s.writeCommand(MEAS_HIGHREP)
	if err != nil {
		return 0, 0, fmt.Errorf("Failed to start measurement: %v", err)
	}
	time.Sleep(measurementTime)
	value, err := s.bus.ReadBytes(s.address, 6)
	if err != nil {
		return 0, 0, fmt.Errorf("Failed to read measurement: %v", err)
	}
	if len(value) != 6 {
		return 0, 0, fmt.Errorf("Short measurement: %d bytes", len(value))
	}

	if value[2] != crc(value[:2]) {
		return 0, 0, fmt.Errorf("CRC check failed for temperature")
	}

	if value[5] != crc(value[3:5]) {
		return 0, 0, fmt.Errorf("CRC check failed for humidity")
	}

	rawTemp := binary.BigEndian.Uint16(value[:2])
	rawHumidity := binary.BigEndian.Uint16(value[3:5])
	return convertTemperature(rawTemp), convertHumidity(rawHumidity), nil
}

// Read implements source.Source. The sensor is mains powered as far as the
// base station is concerned, so the battery is always reported as ok.
func (s *SHT31) Read(ctx context.Context) (source.Reading, error) {
	if err := ctx.Err(); err != nil {
		return source.Reading{}, err
	}
	temp, humidity, err := s.ReadTempAndHum()
	if err != nil {
		return source.Reading{}, err
	}
	return source.Reading{
		Temperature: temp,
		Humidity:    source.HumidityPercent(float64(humidity)),
		BatteryOK:   true,
	}, nil
}
