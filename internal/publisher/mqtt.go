package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/gridsales/internal/config"
	"github.com/jgoulah/gridsales/pkg/models"
)

// publishTimeout bounds how long a build waits for the broker to acknowledge
const publishTimeout = 10 * time.Second

// Client is the part of mqtt.Client the publisher uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher announces finished builds over MQTT
type Publisher struct {
	client      Client
	topicPrefix string
}

// Summary is the retained message published after a dataset is built
type Summary struct {
	RunID      string         `json:"run_id"`
	Dataset    models.Dataset `json:"dataset"`
	FirstYear  int            `json:"first_year"`
	LastYear   int            `json:"last_year"`
	Rows       int            `json:"rows"`
	Output     string         `json:"output"`
	FinishedAt time.Time      `json:"finished_at"`
}

// New connects to the configured broker
func New(mqttCfg config.MQTTConfig, clientID string) (*Publisher, error) {
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	// Create and connect client
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return NewWithClient(client, mqttCfg.TopicPrefix), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client Client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "gridsales"
	}
	return &Publisher{client: client, topicPrefix: topicPrefix}
}

// Topic returns the build topic of a dataset, e.g. gridsales/sales/built
func Topic(prefix string, ds models.Dataset) string {
	return fmt.Sprintf("%s/%s/built", prefix, ds)
}

// Publish sends a retained build summary
func (p *Publisher) Publish(s Summary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := Topic(p.topicPrefix, s.Dataset)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out after %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
