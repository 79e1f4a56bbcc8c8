package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/hatstand/oregontx/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPublisher(t *testing.T) {
	Convey("Publish", t, func() {
		reg := prometheus.NewPedanticRegistry()
		p := NewPublisher(reg)

		p.Publish("garden", source.Reading{Temperature: 21.5, Humidity: 47, BatteryOK: true}, 350*time.Millisecond)
		p.Publish("garden", source.Reading{Temperature: -5.25, Humidity: 60, BatteryOK: false}, 400*time.Millisecond)

		So(testutil.ToFloat64(p.transmissions.WithLabelValues("garden")), ShouldEqual, 2)
		So(testutil.ToFloat64(p.temperature.WithLabelValues("garden")), ShouldEqual, -5.25)
		So(testutil.ToFloat64(p.humidity.WithLabelValues("garden")), ShouldEqual, 60)
		So(testutil.ToFloat64(p.batteryOK.WithLabelValues("garden")), ShouldEqual, 0)

		err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP oregon_battery_ok 1 if the last transmission reported a good battery.
# TYPE oregon_battery_ok gauge
oregon_battery_ok{sensor="garden"} 0
`), "oregon_battery_ok")
		So(err, ShouldBeNil)

		So(testutil.CollectAndCount(p.sendDuration), ShouldEqual, 1)
	})

	Convey("Source errors", t, func() {
		p := NewPublisher(prometheus.NewRegistry())
		p.SourceError("garden")
		p.SourceError("garden")
		p.SourceError("attic")
		So(testutil.ToFloat64(p.sourceErrors.WithLabelValues("garden")), ShouldEqual, 2)
		So(testutil.ToFloat64(p.sourceErrors.WithLabelValues("attic")), ShouldEqual, 1)
	})
}
