package telemetry

import (
	"time"

	"github.com/hatstand/oregontx/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oregon"

// Publisher exports every transmitted reading as Prometheus metrics, labelled
// by sensor name.
type Publisher struct {
	transmissions *prometheus.CounterVec
	sourceErrors  *prometheus.CounterVec
	temperature   *prometheus.GaugeVec
	humidity      *prometheus.GaugeVec
	batteryOK     *prometheus.GaugeVec
	sendDuration  *prometheus.HistogramVec
}

func NewPublisher(reg prometheus.Registerer) *Publisher {
	factory := promauto.With(reg)
	return &Publisher{
		transmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transmissions_total",
			Help:      "Frame pairs sent over the air.",
		}, []string{"sensor"}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failed reads from the reading source.",
		}, []string{"sensor"}),
		temperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last transmitted temperature.",
		}, []string{"sensor"}),
		humidity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_percent",
			Help:      "Last transmitted relative humidity.",
		}, []string{"sensor"}),
		batteryOK: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_ok",
			Help:      "1 if the last transmission reported a good battery.",
		}, []string{"sensor"}),
		sendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Time the transmitter held the pin for one send.",
			Buckets:   prometheus.LinearBuckets(0.3, 0.05, 6),
		}, []string{"sensor"}),
	}
}

func (p *Publisher) Publish(name string, r source.Reading, took time.Duration) {
	p.transmissions.WithLabelValues(name).Inc()
	p.temperature.WithLabelValues(name).Set(float64(r.Temperature))
	p.humidity.WithLabelValues(name).Set(float64(r.Humidity))
	battery := 0.0
	if r.BatteryOK {
		battery = 1
	}
	p.batteryOK.WithLabelValues(name).Set(battery)
	p.sendDuration.WithLabelValues(name).Observe(took.Seconds())
}

func (p *Publisher) SourceError(name string) {
	p.sourceErrors.WithLabelValues(name).Inc()
}
