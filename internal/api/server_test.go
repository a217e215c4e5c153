package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clima-dashboard/internal/countries"
	"clima-dashboard/internal/lookup"
	"clima-dashboard/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWeatherAPI drives the orchestrator without a real upstream.
type stubWeatherAPI struct {
	reading    *weather.Reading
	readingErr error
	air        *weather.AirSample
	airErr     error
	lastQuery  string
}

func (s *stubWeatherAPI) CurrentByQuery(ctx context.Context, query string) (*weather.Reading, error) {
	s.lastQuery = query
	return s.reading, s.readingErr
}

func (s *stubWeatherAPI) CurrentByCoords(ctx context.Context, lat, lon float64) (*weather.Reading, error) {
	return s.reading, s.readingErr
}

func (s *stubWeatherAPI) AirQuality(ctx context.Context, lat, lon float64) (*weather.AirSample, error) {
	return s.air, s.airErr
}

func testReading() *weather.Reading {
	return &weather.Reading{
		PlaceName:     "Madrid",
		TemperatureC:  21.4,
		Description:   "cielo claro",
		IconCode:      "01d",
		HumidityPct:   48,
		WindSpeedMs:   3.2,
		SunriseEpoch:  1700000000,
		SunsetEpoch:   1700030000,
		ObservedEpoch: 1700010000,
		Latitude:      40.4165,
		Longitude:     -3.7026,
	}
}

func newTestServer(t *testing.T, stub *stubWeatherAPI) *httptest.Server {
	t.Helper()

	session := lookup.NewSession(countries.Fallback(), lookup.StaticProbe(true))
	service := lookup.NewService(lookup.ServiceConfig{API: stub, Session: session})

	srv := NewServer(ServerConfig{
		Port:    0,
		Service: service,
		Session: session,
		Loader:  countries.NewLoader(time.Second),
		WebPath: t.TempDir(),
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWeatherEndpoint(t *testing.T) {
	stub := &stubWeatherAPI{
		reading: testReading(),
		air:     &weather.AirSample{AQILevel: 2},
	}
	ts := newTestServer(t, stub)

	status, body := getJSON(t, ts.URL+"/api/v1/weather?city=Madrid&country=ES")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Madrid,ES", stub.lastQuery)

	view := body["view"].(map[string]interface{})
	assert.Equal(t, "21°C", view["temperature"])
	assert.Equal(t, "morning", view["theme"])

	air := view["air"].(map[string]interface{})
	assert.Equal(t, "Buena", air["label"])
}

func TestWeatherEndpointValidation(t *testing.T) {
	ts := newTestServer(t, &stubWeatherAPI{})

	status, body := getJSON(t, ts.URL+"/api/v1/weather?city=")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["kind"])
	assert.Equal(t, lookup.MsgEmptyCity, body["error"])
}

func TestWeatherEndpointNotFound(t *testing.T) {
	stub := &stubWeatherAPI{
		readingErr: fmt.Errorf("%w: 404", weather.ErrNotFound),
	}
	ts := newTestServer(t, stub)

	status, body := getJSON(t, ts.URL+"/api/v1/weather?city=Xyzzy")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, lookup.MsgNotFound, body["error"])
}

func TestWeatherEndpointAirQualityDegrades(t *testing.T) {
	stub := &stubWeatherAPI{
		reading: testReading(),
		airErr:  fmt.Errorf("air pollution down"),
	}
	ts := newTestServer(t, stub)

	status, body := getJSON(t, ts.URL+"/api/v1/weather?city=Madrid")
	require.Equal(t, http.StatusOK, status)

	view := body["view"].(map[string]interface{})
	_, hasAir := view["air"]
	assert.False(t, hasAir)
}

func TestWeatherByCoordsEndpoint(t *testing.T) {
	stub := &stubWeatherAPI{reading: testReading()}
	ts := newTestServer(t, stub)

	status, _ := getJSON(t, ts.URL+"/api/v1/weather/coords?lat=40.4165&lon=-3.7026")
	assert.Equal(t, http.StatusOK, status)

	status, body := getJSON(t, ts.URL+"/api/v1/weather/coords?lat=abc&lon=1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["kind"])
}

func TestLatestEndpoint(t *testing.T) {
	stub := &stubWeatherAPI{reading: testReading()}
	ts := newTestServer(t, stub)

	// Nothing published yet.
	status, _ := getJSON(t, ts.URL+"/api/v1/weather/latest")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = getJSON(t, ts.URL+"/api/v1/weather?city=Madrid")
	require.Equal(t, http.StatusOK, status)

	status, body := getJSON(t, ts.URL+"/api/v1/weather/latest")
	assert.Equal(t, http.StatusOK, status)
	reading := body["reading"].(map[string]interface{})
	assert.Equal(t, "Madrid", reading["place_name"])

	// An error submission clears the published state.
	stub.readingErr = fmt.Errorf("%w: 404", weather.ErrNotFound)
	status, _ = getJSON(t, ts.URL+"/api/v1/weather?city=Xyzzy")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = getJSON(t, ts.URL+"/api/v1/weather/latest")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCountriesEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubWeatherAPI{})

	status, body := getJSON(t, ts.URL+"/api/v1/countries")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "fallback", body["source"])
	assert.Len(t, body["countries"], 5)

	status, body = getJSON(t, ts.URL+"/api/v1/countries?q=esp")
	require.Equal(t, http.StatusOK, status)
	matches := body["countries"].([]interface{})
	require.Len(t, matches, 1)
	assert.Equal(t, "ES", matches[0].(map[string]interface{})["code"])
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubWeatherAPI{})

	status, body := getJSON(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(5), body["countries_loaded"])
}
