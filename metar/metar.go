package metar

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hatstand/oregontx/source"
)

const (
	baseURL = "https://www.ogimet.com/display_metars2.php"
)

var (
	METARMatcher = regexp.MustCompile("^[0-9]{12} .*")
	METARRegexp  = regexp.MustCompile("^([0-9]{12}) (METAR|SPECI|TAF)(?: AMD| COR)? ([A-Z]{4}) [0-9]{6}Z.*")
	TempRegexp   = regexp.MustCompile(" (M?[0-9]{2})/(M?[0-9]{2})(?: |=|$)")
)

type Type int

const (
	Routine Type = iota
	Forecast
)

type METAR struct {
	DateTime    time.Time
	ICAO        string
	ReportType  Type
	Temperature int
	DewPoint    int
}

// RelativeHumidity derives humidity in percent from temperature and dew point
// with the Magnus approximation.
func (m *METAR) RelativeHumidity() float64 {
	const b, c = 17.625, 243.04
	t := float64(m.Temperature)
	td := float64(m.DewPoint)
	return 100 * math.Exp(b*td/(c+td)) / math.Exp(b*t/(c+t))
}

// splitMETARs joins continuation lines so that each report is on one line.
func splitMETARs(data string) []string {
	var ret []string
	var buffer bytes.Buffer
	flush := func() {
		if s := strings.TrimSpace(buffer.String()); s != "" {
			ret = append(ret, s)
		}
		buffer.Reset()
	}
	for _, line := range strings.Split(data, "\n") {
		// Skip comment lines.
		if strings.HasPrefix(line, "#") {
			continue
		}

		// Start of a METAR
		if METARMatcher.MatchString(line) {
			flush()
			buffer.WriteString(strings.TrimSpace(line))
		} else if buffer.Len() > 0 {
			buffer.WriteString(" ")
			buffer.WriteString(strings.TrimSpace(line))
		}
	}
	flush()
	return ret
}

func parseReportType(t string) Type {
	if strings.HasPrefix(t, "METAR") || strings.HasPrefix(t, "SPECI") {
		return Routine
	}
	return Forecast
}

func parseTemperature(t string) int {
	i, _ := strconv.Atoi(strings.TrimPrefix(t, "M"))
	if t[0] == 'M' {
		return i * -1
	}
	return i
}

func parseMETAR(m string) (*METAR, error) {
	parsed := METARRegexp.FindStringSubmatch(m)
	if parsed == nil {
		return nil, fmt.Errorf("Failed to parse METAR: %s", m)
	}

	dateTime, err := time.Parse("200601021504", parsed[1])
	if err != nil {
		return nil, fmt.Errorf("Failed to parse METAR time %s: %v", parsed[1], err)
	}

	ret := &METAR{
		DateTime:   dateTime,
		ICAO:       parsed[3],
		ReportType: parseReportType(parsed[2]),
	}
	if ret.ReportType == Forecast {
		return ret, nil
	}

	tempParsed := TempRegexp.FindStringSubmatch(m)
	if tempParsed == nil {
		return nil, fmt.Errorf("No temperature in METAR: %s", m)
	}
	ret.Temperature = parseTemperature(tempParsed[1])
	ret.DewPoint = parseTemperature(tempParsed[2])
	return ret, nil
}

// ParseMETARs parses ogimet's plain text listing.
func ParseMETARs(data string) ([]*METAR, error) {
	var ret []*METAR
	for _, m := range splitMETARs(data) {
		p, err := parseMETAR(m)
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    http.DefaultClient,
	}
}

// FetchMETARs returns the reports issued by an airport between start and
// finish, newest first.
func (c *Client) FetchMETARs(ctx context.Context, start time.Time, finish time.Time, icao string) ([]*METAR, error) {
	start = start.UTC()
	finish = finish.UTC()
	v := url.Values{}
	v.Set("lang", "en")
	v.Set("lugar", icao)
	v.Set("tipo", "SA")
	v.Set("ord", "REV")
	v.Set("nil", "NO")
	v.Set("fmt", "txt")
	v.Set("ano", strconv.Itoa(start.Year()))
	v.Set("mes", fmt.Sprintf("%02d", start.Month()))
	v.Set("day", fmt.Sprintf("%02d", start.Day()))
	v.Set("hora", fmt.Sprintf("%02d", start.Hour()))
	v.Set("anof", strconv.Itoa(finish.Year()))
	v.Set("mesf", fmt.Sprintf("%02d", finish.Month()))
	v.Set("dayf", fmt.Sprintf("%02d", finish.Day()))
	v.Set("horaf", fmt.Sprintf("%02d", finish.Hour()))
	v.Set("minf", fmt.Sprintf("%02d", finish.Minute()))
	v.Set("send", "send")

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("Bad METAR URL %s: %v", c.BaseURL, err)
	}
	u.RawQuery = v.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %v", err)
	}
	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch METAR data: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to fetch METAR data: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse METAR page: %v", err)
	}
	return ParseMETARs(doc.Find("pre").Text())
}

// Source relays the latest routine report from an airport.
type Source struct {
	Client *Client
	ICAO   string
	// Window is how far back to look for a report. Defaults to three hours.
	Window time.Duration
	Now    func() time.Time
}

func (s *Source) Read(ctx context.Context) (source.Reading, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	window := s.Window
	if window == 0 {
		window = 3 * time.Hour
	}
	finish := now()
	metars, err := s.Client.FetchMETARs(ctx, finish.Add(-window), finish, s.ICAO)
	if err != nil {
		return source.Reading{}, err
	}
	var latest *METAR
	for _, m := range metars {
		if m.ReportType != Routine || m.ICAO != s.ICAO {
			continue
		}
		if latest == nil || m.DateTime.After(latest.DateTime) {
			latest = m
		}
	}
	if latest == nil {
		return source.Reading{}, fmt.Errorf("No METAR for %s in the last %v", s.ICAO, window)
	}
	return source.Reading{
		Temperature: float32(latest.Temperature),
		Humidity:    source.HumidityPercent(latest.RelativeHumidity()),
		BatteryOK:   true,
	}, nil
}
