package metar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTemperatures(t *testing.T) {
	Convey("Temperature", t, func() {
		So(parseTemperature("42"), ShouldEqual, 42)
		So(parseTemperature("M03"), ShouldEqual, -3)
	})
}

func TestParseReportType(t *testing.T) {
	Convey("ReportType", t, func() {
		So(parseReportType("METAR"), ShouldEqual, Routine)
		So(parseReportType("TAF AMD"), ShouldEqual, Forecast)
	})
}

func TestParseMETARs(t *testing.T) {
	Convey("ParseMETARs", t, func() {
		metars, err := ParseMETARs("201708312350 METAR EGLC 312350Z AUTO 24004KT 9999 NCD 14/10 Q1020=\n")
		So(err, ShouldBeNil)
		So(metars, ShouldNotBeEmpty)
		m := metars[0]
		So(m.ReportType, ShouldEqual, Routine)
		So(m.ICAO, ShouldEqual, "EGLC")
		So(m.Temperature, ShouldEqual, 14)
		So(m.DewPoint, ShouldEqual, 10)
		So(m.DateTime.Year(), ShouldEqual, 2017)
		So(m.DateTime.Month(), ShouldEqual, 8)
		So(m.DateTime.Day(), ShouldEqual, 31)
		So(m.DateTime.Hour(), ShouldEqual, 23)
		So(m.DateTime.Minute(), ShouldEqual, 50)
	})

	Convey("ParseEGSS", t, func() {
		metars, err := ParseMETARs("201709081620 METAR COR EGSS 081620Z 24009KT 9000 SHRA BKN049CB 15/13 Q0996=\n")
		So(err, ShouldBeNil)
		So(metars, ShouldNotBeEmpty)
		m := metars[0]
		So(m.ReportType, ShouldEqual, Routine)
		So(m.ICAO, ShouldEqual, "EGSS")
		So(m.Temperature, ShouldEqual, 15)
		So(m.DewPoint, ShouldEqual, 13)
		So(m.DateTime.Year(), ShouldEqual, 2017)
		So(m.DateTime.Month(), ShouldEqual, 9)
		So(m.DateTime.Day(), ShouldEqual, 8)
		So(m.DateTime.Hour(), ShouldEqual, 16)
		So(m.DateTime.Minute(), ShouldEqual, 20)
	})
}

func TestContinuationLines(t *testing.T) {
	Convey("Joins wrapped reports", t, func() {
		data := "# comment\n" +
			"201709081620 METAR EGSS 081620Z 24009KT 9000\n" +
			"   SHRA BKN049CB 15/13 Q0996=\n" +
			"201709081550 TAF AMD EGSS 081550Z 0816/0918 24010KT=\n" +
			"201709081520 METAR EGSS 081520Z 24009KT 9999 M02/M05 Q0996="
		metars, err := ParseMETARs(data)
		So(err, ShouldBeNil)
		So(metars, ShouldHaveLength, 3)
		So(metars[0].Temperature, ShouldEqual, 15)
		So(metars[0].DewPoint, ShouldEqual, 13)
		So(metars[1].ReportType, ShouldEqual, Forecast)
		So(metars[2].Temperature, ShouldEqual, -2)
		So(metars[2].DewPoint, ShouldEqual, -5)
	})

	Convey("Missing temperature", t, func() {
		_, err := ParseMETARs("201709081620 METAR EGSS 081620Z 24009KT 9000 SHRA=")
		So(err, ShouldNotBeNil)
	})
}

func TestRelativeHumidity(t *testing.T) {
	Convey("Saturated", t, func() {
		So((&METAR{Temperature: 10, DewPoint: 10}).RelativeHumidity(), ShouldAlmostEqual, 100, 0.001)
	})
	Convey("Typical", t, func() {
		So((&METAR{Temperature: 14, DewPoint: 10}).RelativeHumidity(), ShouldAlmostEqual, 77, 1)
		So((&METAR{Temperature: 25, DewPoint: 5}).RelativeHumidity(), ShouldAlmostEqual, 27.5, 1)
	})
}

const ogimetPage = `<html><body>
<pre>
# METAR/SPECI from EGLC
201708312350 METAR EGLC 312350Z AUTO 24004KT 9999 NCD 14/10 Q1020=
201708312320 METAR EGLC 312320Z AUTO 24004KT 9999 NCD 15/10 Q1020=
</pre>
</body></html>`

func TestSource(t *testing.T) {
	Convey("Latest routine report", t, func() {
		query := make(chan url.Values, 1)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query <- r.URL.Query()
			fmt.Fprint(w, ogimetPage)
		}))
		defer ts.Close()

		c := NewClient()
		c.BaseURL = ts.URL
		s := &Source{
			Client: c,
			ICAO:   "EGLC",
			Now: func() time.Time {
				return time.Date(2017, 9, 1, 0, 10, 0, 0, time.UTC)
			},
		}
		r, err := s.Read(context.Background())
		So(err, ShouldBeNil)
		So(r.Temperature, ShouldEqual, 14)
		So(r.Humidity, ShouldEqual, 77)
		So(r.BatteryOK, ShouldBeTrue)

		q := <-query
		So(q.Get("lugar"), ShouldEqual, "EGLC")
		So(q.Get("ano"), ShouldEqual, "2017")
		So(q.Get("mes"), ShouldEqual, "08")
		So(q.Get("day"), ShouldEqual, "31")
		So(q.Get("hora"), ShouldEqual, "21")
		So(q.Get("dayf"), ShouldEqual, "01")
		So(q.Get("minf"), ShouldEqual, "10")
	})

	Convey("No reports", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body><pre></pre></body></html>")
		}))
		defer ts.Close()

		c := NewClient()
		c.BaseURL = ts.URL
		_, err := (&Source{Client: c, ICAO: "EGLC"}).Read(context.Background())
		So(err, ShouldNotBeNil)
	})
}
