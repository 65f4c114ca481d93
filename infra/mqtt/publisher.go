package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/voltbus/curtaild/core/model"
	"github.com/voltbus/curtaild/infra/logger"
)

// Config defines the connection parameters for the profile announcer.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "curtaild"
	}
	if c.Topic == "" {
		c.Topic = "curtail/profiles"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	return nil
}

// announcement is the JSON payload published per dispatched profile.
type announcement struct {
	CommandID   string    `json:"command_id"`
	ChargerID   string    `json:"charger_id"`
	ConnectorID int       `json:"connector_id"`
	RateKW      float64   `json:"rate_kw"`
	Purpose     string    `json:"purpose"`
	IssuedAt    time.Time `json:"issued_at"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher announces dispatched charge profiles on an MQTT topic. It
// implements curtail.ProfilePublisher. Publishing is best-effort: the control
// loop logs and ignores failures.
type Publisher struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// PublishProfile publishes one dispatched profile with a fresh command id.
func (p *Publisher) PublishProfile(chargerID string, profile model.ChargeProfile) error {
	if !p.cli.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	payload, err := json.Marshal(announcement{
		CommandID:   uuid.NewString(),
		ChargerID:   chargerID,
		ConnectorID: profile.ConnectorID,
		RateKW:      profile.Rate(),
		Purpose:     profile.Purpose,
		IssuedAt:    profile.StartSchedule,
	})
	if err != nil {
		return err
	}
	if token := p.cli.Publish(p.topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
