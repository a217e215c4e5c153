package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Client talks to the OpenWeather current-weather and air-pollution
// endpoints. BaseURL is overridable so tests can point it at a fake.
type Client struct {
	apiKey  string
	units   string
	lang    string
	BaseURL string
	client  *http.Client
}

func NewClient(apiKey, units, lang string, timeout time.Duration) *Client {
	if units == "" {
		units = "metric"
	}
	if lang == "" {
		lang = "es"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		units:   units,
		lang:    lang,
		BaseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// CompositeQuery builds the "city,countryCode" string the by-name endpoint
// expects. With no country code the query is the city string unchanged.
func CompositeQuery(city, countryCode string) string {
	if countryCode == "" {
		return city
	}
	return fmt.Sprintf("%s,%s", city, countryCode)
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity int      `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneHour float64 `json:"1h"`
	} `json:"snow"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Dt    int64 `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

// CurrentByQuery fetches the current weather for a composite
// "city,countryCode" (or bare city) query string.
func (c *Client) CurrentByQuery(ctx context.Context, query string) (*Reading, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is empty")
	}

	params := url.Values{}
	params.Set("q", query)
	return c.current(ctx, params)
}

// CurrentByCoords fetches the current weather for a coordinate pair,
// skipping the upstream's forward geocoding.
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (*Reading, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is empty")
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	return c.current(ctx, params)
}

func (c *Client) current(ctx context.Context, params url.Values) (*Reading, error) {
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)
	params.Set("lang", c.lang)

	resp, err := c.get(ctx, "/data/2.5/weather", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	return parseCurrent(&payload)
}

// parseCurrent enforces the required upstream fields. Gust and the rain and
// snow accumulations are optional and default to absent/zero; everything
// else must be present or the whole payload is rejected.
func parseCurrent(payload *currentResponse) (*Reading, error) {
	switch {
	case strings.TrimSpace(payload.Name) == "":
		return nil, fmt.Errorf("%w: payload missing place name", ErrUpstream)
	case payload.Main.Temp == nil:
		return nil, fmt.Errorf("%w: payload missing temperature", ErrUpstream)
	case len(payload.Weather) == 0:
		return nil, fmt.Errorf("%w: payload missing weather condition", ErrUpstream)
	case payload.Wind.Speed == nil:
		return nil, fmt.Errorf("%w: payload missing wind speed", ErrUpstream)
	case payload.Sys.Sunrise == 0 || payload.Sys.Sunset == 0:
		return nil, fmt.Errorf("%w: payload missing sunrise/sunset", ErrUpstream)
	case payload.Dt == 0:
		return nil, fmt.Errorf("%w: payload missing observation time", ErrUpstream)
	}

	// First condition entry is authoritative when more than one comes back.
	condition := payload.Weather[0]

	return &Reading{
		PlaceName:     payload.Name,
		TemperatureC:  *payload.Main.Temp,
		Description:   condition.Description,
		IconCode:      condition.Icon,
		HumidityPct:   payload.Main.Humidity,
		WindSpeedMs:   *payload.Wind.Speed,
		WindGustMs:    payload.Wind.Gust,
		RainLastHour:  payload.Rain.OneHour,
		SnowLastHour:  payload.Snow.OneHour,
		SunriseEpoch:  payload.Sys.Sunrise,
		SunsetEpoch:   payload.Sys.Sunset,
		ObservedEpoch: payload.Dt,
		Latitude:      payload.Coord.Lat,
		Longitude:     payload.Coord.Lon,
	}, nil
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 *float64 `json:"pm2_5"`
			PM10 *float64 `json:"pm10"`
			O3   *float64 `json:"o3"`
			NO2  *float64 `json:"no2"`
		} `json:"components"`
	} `json:"list"`
}

// AirQuality fetches the air-pollution sample for a coordinate pair.
// Callers treat any failure here as best-effort: a lookup renders fine
// without it.
func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (*AirSample, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("appid", c.apiKey)

	resp, err := c.get(ctx, "/data/2.5/air_pollution", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}

	var payload airPollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: air pollution payload is empty", ErrUpstream)
	}

	entry := payload.List[0]
	return &AirSample{
		AQILevel: entry.Main.AQI,
		PM25:     entry.Components.PM25,
		PM10:     entry.Components.PM10,
		O3:       entry.Components.O3,
		NO2:      entry.Components.NO2,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	endpoint := fmt.Sprintf("%s%s?%s", c.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("openweather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return resp, nil
}
