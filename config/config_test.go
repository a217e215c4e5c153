package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, "es", cfg.Weather.Lang)
	assert.False(t, cfg.Weather.RequireCountry)
	assert.Equal(t, 8045, cfg.API.Port)
	assert.Equal(t, "clima", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "1.1.1.1:53", cfg.Connectivity.ProbeAddress)
}

func TestLoadEnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("CLIMA_WEATHER_API_KEY", "from-env")
	t.Setenv("CLIMA_MQTT_TOPIC_PREFIX", "tiempo")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, "tiempo", cfg.MQTT.TopicPrefix)
}
