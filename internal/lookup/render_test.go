package lookup

import (
	"testing"

	"clima-dashboard/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReading() *weather.Reading {
	return &weather.Reading{
		PlaceName:     "Madrid",
		TemperatureC:  21.4,
		Description:   "cielo claro",
		IconCode:      "01d",
		HumidityPct:   48,
		WindSpeedMs:   3.27,
		SunriseEpoch:  1700000000,
		SunsetEpoch:   1700030000,
		ObservedEpoch: 1700020000,
		Latitude:      40.4165,
		Longitude:     -3.7026,
	}
}

func TestRenderFormatsReading(t *testing.T) {
	view := Render(sampleReading(), nil)

	assert.Equal(t, "Madrid", view.PlaceName)
	assert.Equal(t, "21°C", view.Temperature)
	assert.Equal(t, "cielo claro", view.Description)
	assert.Equal(t, "48%", view.Humidity)
	assert.Equal(t, "3.3 m/s", view.WindSpeed)
	assert.Equal(t, "-- m/s", view.WindGust)
	assert.Equal(t, "0 mm", view.Precipitation)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@4x.png", view.IconURL)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@2x.png", view.IconFallback)
	assert.Equal(t, Afternoon, view.Theme)
	assert.Nil(t, view.Air)
}

func TestRenderTemperatureRoundsHalfUp(t *testing.T) {
	reading := sampleReading()
	reading.TemperatureC = 21.5
	assert.Equal(t, "22°C", Render(reading, nil).Temperature)

	reading.TemperatureC = -0.4
	assert.Equal(t, "0°C", Render(reading, nil).Temperature)
}

func TestRenderGustPresent(t *testing.T) {
	reading := sampleReading()
	gust := 7.84
	reading.WindGustMs = &gust

	assert.Equal(t, "7.8 m/s", Render(reading, nil).WindGust)
}

func TestRenderPrecipitationSumsRainAndSnow(t *testing.T) {
	reading := sampleReading()
	reading.RainLastHour = 1.2
	reading.SnowLastHour = 0.3

	assert.InDelta(t, 1.5, reading.PrecipitationMm(), 1e-9)
	assert.Equal(t, "1.5 mm", Render(reading, nil).Precipitation)
}

func TestRenderAirSection(t *testing.T) {
	pm25 := 12.34
	air := &weather.AirSample{AQILevel: 3, PM25: &pm25}

	view := Render(sampleReading(), air)
	require.NotNil(t, view.Air)
	assert.Equal(t, 3, view.Air.Level)
	assert.Equal(t, "Moderada", view.Air.Label)
	assert.Equal(t, "#eab308", view.Air.Color)
	assert.Equal(t, "12.3 µg/m³", view.Air.PM25)
	assert.Equal(t, "--", view.Air.PM10)
	assert.Equal(t, "--", view.Air.O3)
	assert.Equal(t, "--", view.Air.NO2)
}
