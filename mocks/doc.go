// Package mocks holds gomock doubles for the interfaces used across the
// repository.
package mocks

//go:generate mockgen -destination=mock_oregontx.go -package=mocks github.com/hatstand/oregontx OutputPin,Delayer
//go:generate mockgen -destination=mock_source.go -package=mocks github.com/hatstand/oregontx/source Source
//go:generate mockgen -destination=mock_beacon.go -package=mocks github.com/hatstand/oregontx/beacon Transmitter,StatusPublisher
//go:generate mockgen -destination=mock_sht31.go -package=mocks github.com/hatstand/oregontx/sensors/sht31 Bus
//go:generate mockgen -destination=mock_cc1101.go -package=mocks -mock_names=Bus=MockSPIBus github.com/hatstand/oregontx/cc1101 Bus
