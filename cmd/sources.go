package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hatstand/oregontx/config"
	"github.com/hatstand/oregontx/metar"
	"github.com/hatstand/oregontx/sensors/sht31"
	"github.com/hatstand/oregontx/source"
	"github.com/hatstand/oregontx/weather"
	"github.com/hatstand/oregontx/wirelesstag"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/rpi"
	"go.uber.org/zap"
)

const httpTimeout = 30 * time.Second

// newSource builds the configured source. The returned func releases any
// hardware it holds.
func newSource(ctx context.Context, s config.SourceSettings, logger *zap.Logger) (source.Source, func(), error) {
	nop := func() {}
	switch s.Kind {
	case config.Static:
		return source.Static{
			Temperature: s.Temperature,
			Humidity:    uint8(s.Humidity),
			BatteryOK:   !s.BatteryLow,
		}, nop, nil

	case config.SHT31:
		if err := embd.InitI2C(); err != nil {
			return nil, nop, fmt.Errorf("Failed to initialize I2C: %v", err)
		}
		bus := embd.NewI2CBus(byte(s.I2CBus))
		sensor := sht31.NewSHT31(bus, byte(s.Address))
		closer := func() {
			bus.Close()
			embd.CloseI2C()
		}
		if err := sensor.Init(); err != nil {
			closer()
			return nil, nop, err
		}
		return sensor, closer, nil

	case config.Weather:
		c := weather.NewClient(s.APIKey, s.GetCacheTTL(), logger)
		c.HTTP = &http.Client{Timeout: httpTimeout}
		return &weather.Source{Client: c, Location: s.Location}, nop, nil

	case config.METAR:
		c := metar.NewClient()
		c.HTTP = &http.Client{Timeout: httpTimeout}
		return &metar.Source{Client: c, ICAO: s.ICAO}, nop, nil

	case config.WirelessTag:
		file := s.TokenFile
		if file == "" {
			var err error
			file, err = wirelesstag.TokenCacheFile()
			if err != nil {
				return nil, nop, err
			}
		}
		c, err := wirelesstag.NewClient(ctx, s.ClientID, s.ClientSecret, file, logger)
		if err != nil {
			return nil, nop, err
		}
		return &wirelesstag.Source{Client: c, Name: s.Tag}, nop, nil
	}
	return nil, nop, fmt.Errorf("Unknown source kind: %s", s.Kind)
}
