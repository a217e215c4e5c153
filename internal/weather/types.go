package weather

import "fmt"

// Reading is the decoded state of one current-weather observation.
// It lives for a single lookup cycle and is never stored.
type Reading struct {
	PlaceName     string   `json:"place_name"`
	TemperatureC  float64  `json:"temperature_c"`
	Description   string   `json:"description"`
	IconCode      string   `json:"icon_code"`
	HumidityPct   int      `json:"humidity_pct"`
	WindSpeedMs   float64  `json:"wind_speed_ms"`
	WindGustMs    *float64 `json:"wind_gust_ms,omitempty"`
	RainLastHour  float64  `json:"rain_1h_mm"`
	SnowLastHour  float64  `json:"snow_1h_mm"`
	SunriseEpoch  int64    `json:"sunrise"`
	SunsetEpoch   int64    `json:"sunset"`
	ObservedEpoch int64    `json:"observed_at"`
	Latitude      float64  `json:"lat"`
	Longitude     float64  `json:"lon"`
}

// PrecipitationMm is the combined last-hour rain and snow accumulation.
// Absent upstream fields decode as zero, so the total is never negative.
func (r *Reading) PrecipitationMm() float64 {
	return r.RainLastHour + r.SnowLastHour
}

// IconURL returns the full-size condition icon. IconURLSmall is the
// lower-resolution variant the widget falls back to when the big asset
// fails to load.
func (r *Reading) IconURL() string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@4x.png", r.IconCode)
}

func (r *Reading) IconURLSmall() string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", r.IconCode)
}

// AirSample is one air-quality measurement for a coordinate pair.
// AQILevel follows the upstream 1 (best) to 5 (worst) scale. Pollutant
// concentrations are µg/m³ and nil when the upstream omits them.
type AirSample struct {
	AQILevel int      `json:"aqi"`
	PM25     *float64 `json:"pm2_5,omitempty"`
	PM10     *float64 `json:"pm10,omitempty"`
	O3       *float64 `json:"o3,omitempty"`
	NO2      *float64 `json:"no2,omitempty"`
}
