package source

import (
	"context"
	"fmt"
	"math"
)

// Reading is one set of values to transmit.
type Reading struct {
	Temperature float32
	Humidity    uint8
	BatteryOK   bool
}

func (r Reading) String() string {
	battery := "ok"
	if !r.BatteryOK {
		battery = "low"
	}
	return fmt.Sprintf("%.1fC %d%% battery %s", r.Temperature, r.Humidity, battery)
}

// Source produces readings on demand.
type Source interface {
	Read(ctx context.Context) (Reading, error)
}

// Static always returns the same reading.
type Static Reading

func (s Static) Read(ctx context.Context) (Reading, error) {
	return Reading(s), nil
}

// Func adapts a function to a Source.
type Func func(ctx context.Context) (Reading, error)

func (f Func) Read(ctx context.Context) (Reading, error) {
	return f(ctx)
}

// HumidityPercent rounds a relative humidity to the 0-99 range an Oregon
// display can show.
func HumidityPercent(h float64) uint8 {
	if math.IsNaN(h) || h < 0 {
		return 0
	}
	if h > 99 {
		return 99
	}
	return uint8(math.Round(h))
}
