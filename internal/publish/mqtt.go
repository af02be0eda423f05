// Package publish pushes an acquired fix to an MQTT broker so trackers can
// pick it up without polling the host.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sim7600gps/internal/cgps"
	"sim7600gps/internal/config"
)

const connectTimeout = 10 * time.Second

type Publisher struct {
	client mqtt.Client
	cfg    config.MQTTConfig
	log    zerolog.Logger
}

// NewMQTT connects to the configured broker.
func NewMQTT(cfg config.MQTTConfig) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}

	return &Publisher{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("module", "publish").Logger(),
	}, nil
}

// PublishFix sends the fix as JSON to the configured topic.
func (p *Publisher) PublishFix(fix *cgps.Fix) error {
	payload, err := json.Marshal(fix)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", p.cfg.Topic, err)
	}
	p.log.Info().Str("topic", p.cfg.Topic).Msg("fix published")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
