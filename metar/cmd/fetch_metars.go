package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hatstand/oregontx/metar"
	"github.com/wcharczuk/go-chart"
)

var icao = flag.String("icao", "EGLC", "ICAO code of an airport")
var days = flag.Int("days", 2, "Days of history to fetch")
var png = flag.Bool("png", false, "Writes a PNG chart of temperature and derived humidity to stdout")

func main() {
	flag.Parse()

	finish := time.Now().Round(time.Hour)
	start := finish.Add(-time.Duration(*days) * 24 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	METARs, err := metar.NewClient().FetchMETARs(ctx, start, finish, *icao)
	if err != nil {
		log.Fatalf("Failed to fetch METARs: %v", err)
	}

	var x []time.Time
	var temp []float64
	var humidity []float64
	for _, m := range METARs {
		if m.ReportType != metar.Routine {
			continue
		}
		if !*png {
			log.Printf("%s %s %dC dew point %dC humidity %.0f%%", m.DateTime.Format(time.RFC3339), m.ICAO, m.Temperature, m.DewPoint, m.RelativeHumidity())
		}
		x = append(x, m.DateTime)
		temp = append(temp, float64(m.Temperature))
		humidity = append(humidity, m.RelativeHumidity())
	}
	if !*png {
		return
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{
			Style: chart.Style{
				Show: true,
			},
		},
		YAxis: chart.YAxis{
			Name:      "°C",
			NameStyle: chart.Style{Show: true},
			Style: chart.Style{
				Show: true,
			},
		},
		YAxisSecondary: chart.YAxis{
			Name:      "%",
			NameStyle: chart.Style{Show: true},
			Style: chart.Style{
				Show: true,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Temperature",
				XValues: x,
				YValues: temp,
			},
			chart.TimeSeries{
				Name:    "Humidity",
				YAxis:   chart.YAxisSecondary,
				XValues: x,
				YValues: humidity,
			},
		},
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if err := graph.Render(chart.PNG, w); err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}
}
