package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/hatstand/oregontx/source"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	baseUrl = "https://api.openweathermap.org/data/2.5/weather"
)

type Observation struct {
	CurrentTemp float32
	MaxTemp     float32
	MinTemp     float32
	Icon        string
	Humidity    int32
}

func kelvinToCelsius(k float32) float32 {
	return k - 273.15
}

// Client fetches current conditions from OpenWeatherMap. Observations are
// cached per location since the free API tier is rate limited and conditions
// change far slower than a sensor transmits.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	cache  *cache.Cache
	logger *zap.Logger
}

func NewClient(apiKey string, ttl time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: baseUrl,
		APIKey:  apiKey,
		HTTP:    http.DefaultClient,
		cache:   cache.New(ttl, 2*ttl),
		logger:  logger,
	}
}

func (c *Client) FetchCurrentWeather(ctx context.Context, loc string) (*Observation, error) {
	if cached, found := c.cache.Get(loc); found {
		return cached.(*Observation), nil
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("Bad weather URL %s: %v", c.BaseURL, err)
	}
	q := u.Query()
	q.Set("q", loc)
	q.Set("appid", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %v", err)
	}
	c.logger.Debug("Fetching weather", zap.String("location", loc))
	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch weather: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to fetch weather: %s", resp.Status)
	}

	type Condition struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}

	type Weather struct {
		Temp     float32 `json:"temp"`
		Pressure int32   `json:"pressure"`
		Humidity int32   `json:"humidity"`
		Min      float32 `json:"temp_min"`
		Max      float32 `json:"temp_max"`
	}

	type Message struct {
		C []Condition `json:"weather"`
		W Weather     `json:"main"`
	}

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to read body: %v", err)
	}

	var m Message
	err = json.Unmarshal(data, &m)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse json: %v", err)
	}

	o := &Observation{
		CurrentTemp: kelvinToCelsius(m.W.Temp),
		Humidity:    m.W.Humidity,
		MinTemp:     kelvinToCelsius(m.W.Min),
		MaxTemp:     kelvinToCelsius(m.W.Max),
	}
	if len(m.C) > 0 {
		o.Icon = fmt.Sprintf("https://openweathermap.org/img/w/%s.png", m.C[0].Icon)
	}
	c.cache.Set(loc, o, cache.DefaultExpiration)
	return o, nil
}

// Source relays the current outdoor conditions for a location.
type Source struct {
	Client   *Client
	Location string
}

func (s *Source) Read(ctx context.Context) (source.Reading, error) {
	o, err := s.Client.FetchCurrentWeather(ctx, s.Location)
	if err != nil {
		return source.Reading{}, err
	}
	return source.Reading{
		Temperature: o.CurrentTemp,
		Humidity:    source.HumidityPercent(float64(o.Humidity)),
		BatteryOK:   true,
	}, nil
}
