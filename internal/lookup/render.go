package lookup

import (
	"fmt"
	"math"

	"clima-dashboard/internal/weather"
)

// Rendering is the display-ready view of one successful lookup: every
// value already formatted the way the widget shows it.
type Rendering struct {
	PlaceName     string        `json:"place_name"`
	Temperature   string        `json:"temperature"`
	Description   string        `json:"description"`
	Humidity      string        `json:"humidity"`
	WindSpeed     string        `json:"wind_speed"`
	WindGust      string        `json:"wind_gust"`
	Precipitation string        `json:"precipitation"`
	IconURL       string        `json:"icon_url"`
	IconFallback  string        `json:"icon_fallback_url"`
	Theme         DayPart       `json:"theme"`
	Air           *AirRendering `json:"air,omitempty"`
}

// AirRendering is the formatted air-quality section. It is omitted
// entirely when the secondary fetch did not produce a sample.
type AirRendering struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
	PM25  string `json:"pm2_5"`
	PM10  string `json:"pm10"`
	O3    string `json:"o3"`
	NO2   string `json:"no2"`
}

// Render formats a reading, and optionally an air sample, into the view
// the widget shows. air may be nil.
func Render(reading *weather.Reading, air *weather.AirSample) *Rendering {
	view := &Rendering{
		PlaceName:     reading.PlaceName,
		Temperature:   fmt.Sprintf("%d°C", int(math.Round(reading.TemperatureC))),
		Description:   reading.Description,
		Humidity:      fmt.Sprintf("%d%%", reading.HumidityPct),
		WindSpeed:     fmt.Sprintf("%.1f m/s", reading.WindSpeedMs),
		WindGust:      "-- m/s",
		Precipitation: formatPrecipitation(reading.PrecipitationMm()),
		IconURL:       reading.IconURL(),
		IconFallback:  reading.IconURLSmall(),
		Theme: ClassifyDayPart(
			reading.IconCode,
			reading.ObservedEpoch,
			reading.SunriseEpoch,
			reading.SunsetEpoch,
		),
	}

	if reading.WindGustMs != nil {
		view.WindGust = fmt.Sprintf("%.1f m/s", *reading.WindGustMs)
	}

	if air != nil {
		label, color := DescribeAQI(air.AQILevel)
		view.Air = &AirRendering{
			Level: air.AQILevel,
			Label: label,
			Color: color,
			PM25:  formatPollutant(air.PM25),
			PM10:  formatPollutant(air.PM10),
			O3:    formatPollutant(air.O3),
			NO2:   formatPollutant(air.NO2),
		}
	}

	return view
}

// Zero precipitation still renders as an explicit "0 mm", never "n/a".
func formatPrecipitation(totalMm float64) string {
	if totalMm > 0 {
		return fmt.Sprintf("%.1f mm", totalMm)
	}
	return "0 mm"
}

func formatPollutant(value *float64) string {
	if value == nil {
		return "--"
	}
	return fmt.Sprintf("%.1f µg/m³", *value)
}
