package wirelesstag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/hatstand/oregontx/source"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	baseURL = "https://www.mytaglist.com"

	// Tags report remaining battery as a fraction.
	lowBattery = 0.25
)

var endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.mytaglist.com/oauth2/authorize.aspx",
	TokenURL: "https://www.mytaglist.com/oauth2/access_token.aspx",
}

type Tag struct {
	Name             string  `json:"name"`
	Temperature      float64 `json:"temperature"`
	UUID             string  `json:"uuid"`
	SignaldBm        float64 `json:"signaldBm"`
	BatteryRemaining float64 `json:"batteryRemaining"`
	Humidity         float64 `json:"cap"`
	Type             int     `json:"tagType"`
	ID               int     `json:"slaveId"`
}

type TagList struct {
	Tag []Tag `json:"d"`
}

func exchangeToken(ctx context.Context, config *oauth2.Config, code string) (*oauth2.Token, error) {
	form := url.Values{
		"client_id":     {config.ClientID},
		"client_secret": {config.ClientSecret},
		"code":          {code},
	}
	req, err := http.NewRequest(http.MethodPost, config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Failed to exchange token: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to exchange token: %s", response.Status)
	}

	var token oauth2.Token
	err = json.NewDecoder(response.Body).Decode(&token)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode response: %v", err)
	}
	return &token, nil
}

// TokenCacheFile is where a token is kept between runs.
func TokenCacheFile() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("Failed to get cache file: %v", err)
	}
	tokenCacheDir := filepath.Join(usr.HomeDir, ".credentials")
	if err := os.MkdirAll(tokenCacheDir, 0700); err != nil {
		return "", fmt.Errorf("Failed to create %s: %v", tokenCacheDir, err)
	}
	return filepath.Join(tokenCacheDir, url.QueryEscape("mytaglist.json")), nil
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("Unable to cache oauth token: %v", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("Failed to open token cache file: %v", err)
	}
	defer f.Close()
	t := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(t)
	return t, err
}

// tokenFromWeb runs the authorization code flow against a one-shot local
// listener. The user has to visit the logged URL.
func tokenFromWeb(ctx context.Context, clientId string, clientSecret string, logger *zap.Logger) (*oauth2.Token, error) {
	state := uniuri.New()
	mux := http.NewServeMux()
	srv := &http.Server{
		Handler: mux,
	}

	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return nil, fmt.Errorf("Failed to start http listener: %v", err)
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		return nil, fmt.Errorf("Failed to parse address: %v", err)
	}

	config := &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		Scopes:       []string{},
		Endpoint:     endpoint,
		RedirectURL:  "http://localhost:" + port + "/",
	}

	type result struct {
		token *oauth2.Token
		err   error
	}
	done := make(chan result, 1)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		retState := r.URL.Query().Get("state")
		if retState != state {
			http.Error(w, "State inconsistent", http.StatusBadRequest)
			done <- result{err: fmt.Errorf("State does not match. Expected: %s Got: %s", state, retState)}
			return
		}
		token, err := exchangeToken(ctx, config, r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, "Oops!", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorized")
		}
		done <- result{token: token, err: err}
	})

	go srv.Serve(listener)
	logger.Info("Visit the URL for the auth dialog", zap.String("url", config.AuthCodeURL(state)))

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv.Shutdown(stopCtx)
	return res.token, res.err
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	logger  *zap.Logger
}

// NewClient authorizes against mytaglist, reusing the token in cacheFile if
// there is one.
func NewClient(ctx context.Context, clientId string, clientSecret string, cacheFile string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	token, err := tokenFromFile(cacheFile)
	if err != nil {
		logger.Info("No cached token", zap.Error(err))
		token, err = tokenFromWeb(ctx, clientId, clientSecret, logger)
		if err != nil {
			return nil, fmt.Errorf("Unable to get token from web: %v", err)
		}
		if err := saveToken(cacheFile, token); err != nil {
			logger.Warn("Failed to save token", zap.Error(err))
		}
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
		logger:  logger,
	}, nil
}

func (c *Client) GetTags(ctx context.Context) ([]Tag, error) {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/ethClient.asmx/GetTagListCached", bytes.NewBuffer([]byte(`{}`)))
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch tags: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Failed to fetch tags: %s", resp.Status)
	}

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to read response: %v", err)
	}

	var tags TagList
	err = json.Unmarshal(data, &tags)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode JSON: %v", err)
	}
	return tags.Tag, nil
}

// Source relays a single tag, looked up by name.
type Source struct {
	Client *Client
	Name   string
}

func (s *Source) Read(ctx context.Context) (source.Reading, error) {
	tags, err := s.Client.GetTags(ctx)
	if err != nil {
		return source.Reading{}, err
	}
	for _, t := range tags {
		if t.Name != s.Name {
			continue
		}
		return source.Reading{
			Temperature: float32(t.Temperature),
			Humidity:    source.HumidityPercent(t.Humidity),
			BatteryOK:   t.BatteryRemaining >= lowBattery,
		}, nil
	}
	return source.Reading{}, fmt.Errorf("No tag named %q", s.Name)
}
