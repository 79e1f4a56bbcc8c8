package main

import (
	"fmt"

	"github.com/hatstand/oregontx/cc1101"
	"github.com/hatstand/oregontx/config"
	"github.com/kidoman/embd"
	"go.uber.org/zap"
)

// openRadio brings up a CC1101 on SPI. The returned func resets it and
// releases the bus.
func openRadio(conf config.Settings, logger *zap.Logger) (*cc1101.CC1101, func(), error) {
	if err := embd.InitSPI(); err != nil {
		return nil, nil, fmt.Errorf("Failed to initialize SPI: %v", err)
	}
	bus := embd.NewSPIBus(embd.SPIMode0, byte(conf.SPIChannel), conf.SPISpeed, 8, 0)
	closer := func() {
		bus.Close()
		embd.CloseSPI()
	}
	radio := cc1101.NewCC1101(bus, logger)
	if err := radio.Open(); err != nil {
		closer()
		return nil, nil, err
	}
	return radio, func() {
		radio.Close()
		closer()
	}, nil
}
