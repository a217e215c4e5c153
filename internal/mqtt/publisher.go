package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"clima-dashboard/internal/lookup"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher republishes each successful lookup to MQTT so home-automation
// consumers can track the last queried place. Disabled mode is a no-op.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// Publish sends the outcome's values on per-field topics plus the full
// rendering as a retained JSON status. Error outcomes only publish the
// error message so dashboards can blank themselves.
func (p *Publisher) Publish(outcome lookup.Outcome) error {
	if !p.enabled {
		return nil
	}

	if !outcome.OK() {
		topic := fmt.Sprintf("%s/error", p.topicPrefix)
		token := p.client.Publish(topic, 0, false, outcome.Err.Message)
		token.Wait()
		return token.Error()
	}

	place := topicSegment(outcome.Reading.PlaceName)
	topics := map[string]interface{}{
		"place":         outcome.Reading.PlaceName,
		"temperature":   outcome.Reading.TemperatureC,
		"description":   outcome.Reading.Description,
		"humidity":      outcome.Reading.HumidityPct,
		"wind_speed":    outcome.Reading.WindSpeedMs,
		"precipitation": outcome.Reading.PrecipitationMm(),
		"theme":         outcome.View.Theme,
	}
	if outcome.Air != nil {
		topics["aqi"] = outcome.Air.AQILevel
	}

	for name, value := range topics {
		topic := fmt.Sprintf("%s/%s/%s", p.topicPrefix, place, name)
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	statusJSON, err := json.Marshal(outcome.View)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	statusTopic := fmt.Sprintf("%s/%s/status", p.topicPrefix, place)
	token := p.client.Publish(statusTopic, 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish status: %w", token.Error())
	}

	return nil
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(250)
	}
}

func topicSegment(name string) string {
	segment := strings.ToLower(strings.TrimSpace(name))
	segment = strings.ReplaceAll(segment, " ", "_")
	segment = strings.ReplaceAll(segment, "/", "_")
	if segment == "" {
		return "unknown"
	}
	return segment
}
