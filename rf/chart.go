package rf

import (
	"io"

	"github.com/wcharczuk/go-chart"
)

// Waveform returns the trace as a step series: time in microseconds against
// line level.
func Waveform(pulses []Pulse) (x []float64, y []float64) {
	var t float64
	for _, p := range pulses {
		level := 0.0
		if p.High {
			level = 1
		}
		x = append(x, t)
		y = append(y, level)
		t += float64(p.Duration.Microseconds())
		x = append(x, t)
		y = append(y, level)
	}
	return x, y
}

// Chart renders the recorded trace as a PNG.
func (r *Recorder) Chart(title string, w io.Writer) error {
	x, y := Waveform(r.Pulses())
	graph := chart.Chart{
		Title: title,
		TitleStyle: chart.Style{
			Show: title != "",
		},
		Width:  2048,
		Height: 256,
		XAxis: chart.XAxis{
			Name:      "µs",
			NameStyle: chart.Style{Show: true},
			Style: chart.Style{
				Show: true,
			},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				Show: true,
			},
			Range: &chart.ContinuousRange{Min: -0.1, Max: 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: x,
				YValues: y,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
