package receiver

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/elrstools/crsflink/internal/crsf"
)

const mqttConnectTimeout = 5 * time.Second

// publisher pushes decoded telemetry records to an MQTT broker, one topic
// per frame type under the configured prefix.
type publisher struct {
	client paho.Client
	prefix string
	log    zerolog.Logger
}

func newPublisher(cfg MQTTConfig, logger zerolog.Logger) (*publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn().Err(err).Msg("mqtt connection lost")
	})
	opts.SetOnConnectHandler(func(paho.Client) {
		logger.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("receiver: mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("receiver: mqtt connect to %s: %w", cfg.Broker, err)
	}

	return &publisher{
		client: client,
		prefix: cfg.TopicPrefix,
		log:    logger,
	}, nil
}

// publish sends one record as JSON. Unknown frames are skipped: their raw
// payloads are not useful downstream. Delivery is fire and forget at QoS 0.
func (p *publisher) publish(rec crsf.Record) {
	if _, ok := rec.(crsf.Unknown); ok {
		return
	}
	body, err := json.Marshal(rec)
	if err != nil {
		p.log.Warn().Err(err).Str("type", rec.Type().String()).Msg("mqtt marshal failed")
		return
	}
	topic := p.prefix + "/" + rec.Type().String()
	p.client.Publish(topic, 0, false, body)
}

func (p *publisher) close() {
	p.client.Disconnect(250)
}
