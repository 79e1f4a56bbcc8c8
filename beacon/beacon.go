// Package beacon periodically relays readings from a source over the air.
package beacon

import (
	"context"
	"fmt"
	"time"

	"github.com/hatstand/oregontx/source"
	"go.uber.org/zap"
)

type Transmitter interface {
	Send(humidity byte, temperature float32, batteryOK bool)
}

type StatusPublisher interface {
	Publish(name string, r source.Reading, took time.Duration)
	SourceError(name string)
}

// ErrReporter is implemented by output pins that latch write failures.
type ErrReporter interface {
	Err() error
}

type Beacon struct {
	Name        string
	Source      source.Source
	Transmitter Transmitter
	Interval    time.Duration
	// Optional.
	Publisher StatusPublisher
	Pin       ErrReporter
	Logger    *zap.Logger
}

func (b *Beacon) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// Tick reads the source once and transmits the result. A failed read skips
// the transmission; a failed pin is returned as an error.
func (b *Beacon) Tick(ctx context.Context) error {
	logger := b.logger().With(zap.String("sensor", b.Name))
	r, err := b.Source.Read(ctx)
	if err != nil {
		logger.Warn("Failed to read source", zap.Error(err))
		if b.Publisher != nil {
			b.Publisher.SourceError(b.Name)
		}
		return nil
	}

	start := time.Now()
	b.Transmitter.Send(r.Humidity, r.Temperature, r.BatteryOK)
	took := time.Since(start)

	if b.Pin != nil {
		if err := b.Pin.Err(); err != nil {
			logger.Error("Transmission failed", zap.Error(err))
			return fmt.Errorf("Failed to transmit: %v", err)
		}
	}
	logger.Info("Sent reading",
		zap.Stringer("reading", r),
		zap.Duration("took", took))
	if b.Publisher != nil {
		b.Publisher.Publish(b.Name, r, took)
	}
	return nil
}

// Run transmits immediately and then every Interval until ctx is done. A send
// in progress always completes.
func (b *Beacon) Run(ctx context.Context) error {
	if b.Interval <= 0 {
		return fmt.Errorf("Invalid interval: %v", b.Interval)
	}
	if err := b.Tick(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := b.Tick(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
