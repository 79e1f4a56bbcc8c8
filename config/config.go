package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hatstand/oregontx"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

const (
	Static      = "static"
	SHT31       = "sht31"
	Weather     = "weather"
	METAR       = "metar"
	WirelessTag = "wirelesstag"

	GPIO   = "gpio"
	CC1101 = "cc1101"
)

type SourceSettings struct {
	Kind string `yaml:"kind"`

	// static
	Temperature float32 `yaml:"temperature"`
	Humidity    int     `yaml:"humidity"`
	BatteryLow  bool    `yaml:"battery_low"`

	// sht31
	I2CBus  int `yaml:"i2c_bus"`
	Address int `yaml:"address"`

	// weather
	APIKey   string `yaml:"api_key"`
	Location string `yaml:"location"`
	CacheTTL int    `yaml:"cache_ttl"`

	// metar
	ICAO string `yaml:"icao"`

	// wirelesstag
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Tag          string `yaml:"tag"`
	TokenFile    string `yaml:"token_file"`
}

type Settings struct {
	Name           string         `yaml:"name"`
	Pin            string         `yaml:"pin"`
	Radio          string         `yaml:"radio"`
	SPIChannel     int            `yaml:"spi_channel"`
	SPISpeed       int            `yaml:"spi_speed"`
	Channel        int            `yaml:"channel"`
	ChannelCode    int            `yaml:"channel_code"`
	SensorID       int            `yaml:"sensor_id"`
	Humidity       bool           `yaml:"humidity"`
	Interval       int            `yaml:"interval"`
	LogLevel       string         `yaml:"log_level"`
	MetricsAddress string         `yaml:"metrics_address"`
	Source         SourceSettings `yaml:"source"`
}

// GetChannelCode prefers a raw channel_code over the channel number.
func (s *Settings) GetChannelCode() byte {
	if s.ChannelCode != 0 {
		return byte(s.ChannelCode)
	}
	return oregontx.ChannelCode(s.Channel)
}

// GetInterval falls back to the period of a real sensor on the same channel.
func (s *Settings) GetInterval() time.Duration {
	if s.Interval > 0 {
		return time.Duration(s.Interval) * time.Second
	}
	return oregontx.Interval(s.GetChannelCode())
}

func (s *Settings) GetLogLevel() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (s *SourceSettings) GetCacheTTL() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

func Default() Settings {
	return Settings{
		Name:           "oregon",
		Pin:            "GPIO17",
		Radio:          GPIO,
		SPISpeed:       50000,
		Channel:        1,
		LogLevel:       "info",
		MetricsAddress: ":9171",
		Source: SourceSettings{
			Kind:     Static,
			Address:  0x44,
			I2CBus:   1,
			CacheTTL: 600,
		},
	}
}

// New reads settings from a YAML file on top of Default.
func New(confPath string) (Settings, error) {
	c := Default()
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, fmt.Errorf("Failed to read config file %s: %v", confPath, err)
	}
	if err := Parse(data, &c); err != nil {
		return c, fmt.Errorf("Invalid config file %s: %v", confPath, err)
	}
	return c, nil
}

func Parse(data []byte, c *Settings) error {
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return err
	}
	return c.Validate()
}

func (s *Settings) Validate() error {
	if s.ChannelCode < 0 || s.ChannelCode > 0xff {
		return fmt.Errorf("channel_code %d out of range", s.ChannelCode)
	}
	if s.ChannelCode == 0 && oregontx.ChannelCode(s.Channel) == 0 {
		return fmt.Errorf("channel must be 1, 2 or 3, got %d", s.Channel)
	}
	if s.SensorID < 0 || s.SensorID > 0xff {
		return fmt.Errorf("sensor_id %d out of range", s.SensorID)
	}
	if s.Interval < 0 {
		return fmt.Errorf("negative interval %d", s.Interval)
	}
	if s.Pin == "" {
		return fmt.Errorf("no pin")
	}
	switch s.Radio {
	case GPIO:
	case CC1101:
		if s.SPIChannel < 0 || s.SPIChannel > 1 {
			return fmt.Errorf("spi_channel must be 0 or 1, got %d", s.SPIChannel)
		}
		if s.SPISpeed <= 0 {
			return fmt.Errorf("invalid spi_speed %d", s.SPISpeed)
		}
	default:
		return fmt.Errorf("unknown radio %q", s.Radio)
	}

	src := &s.Source
	switch src.Kind {
	case Static:
		if src.Humidity < 0 || src.Humidity > 99 {
			return fmt.Errorf("static humidity %d out of range", src.Humidity)
		}
	case SHT31:
		if src.Address <= 0 || src.Address > 0x7f {
			return fmt.Errorf("sht31 address %#x out of range", src.Address)
		}
	case Weather:
		if src.APIKey == "" || src.Location == "" {
			return fmt.Errorf("weather source needs api_key and location")
		}
	case METAR:
		if len(src.ICAO) != 4 {
			return fmt.Errorf("metar source needs a four letter icao, got %q", src.ICAO)
		}
	case WirelessTag:
		if src.ClientID == "" || src.ClientSecret == "" || src.Tag == "" {
			return fmt.Errorf("wirelesstag source needs client_id, client_secret and tag")
		}
	default:
		return fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return nil
}
