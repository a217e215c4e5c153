package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Weather      WeatherConfig      `mapstructure:"weather"`
	API          APIConfig          `mapstructure:"api"`
	MQTT         MQTTConfig         `mapstructure:"mqtt"`
	Countries    CountriesConfig    `mapstructure:"countries"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
}

type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Units   string        `mapstructure:"units"`
	Lang    string        `mapstructure:"lang"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RequireCountry switches the widget to the stricter contract where a
	// query without a country selection is rejected.
	RequireCountry bool `mapstructure:"require_country"`
}

type APIConfig struct {
	Port    int    `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
	WebPath string `mapstructure:"web_path"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type CountriesConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ConnectivityConfig struct {
	ProbeAddress string        `mapstructure:"probe_address"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/clima-dashboard")
	}

	viper.SetEnvPrefix("clima")
	// Nested keys map to env vars as CLIMA_WEATHER_API_KEY etc.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("weather.api_key", "")
	viper.SetDefault("weather.units", "metric")
	viper.SetDefault("weather.lang", "es")
	viper.SetDefault("weather.timeout", "10s")
	viper.SetDefault("weather.require_country", false)
	viper.SetDefault("api.port", 8045)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.web_path", "./web")
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "clima")
	viper.SetDefault("mqtt.client_id", "clima-dashboard")
	viper.SetDefault("countries.timeout", "10s")
	viper.SetDefault("connectivity.probe_address", "1.1.1.1:53")
	viper.SetDefault("connectivity.probe_timeout", "2s")
	viper.SetDefault("connectivity.cache_ttl", "30s")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
