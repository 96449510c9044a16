package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ac_watchdog/internal/config"
	"ac_watchdog/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttQoS            = 1
	mqttPublishTimeout = 5 * time.Second
	mqttDisconnectMs   = 250
)

// publisher is the part of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes alarm edges as retained JSON on <topic>/<class>.
type MQTT struct {
	client publisher
	topic  string
	close  func()
}

// NewMQTT connects to the broker. The connection status is published retained
// on <topic>/status, with "offline" as the last will.
func NewMQTT(cfg config.MQTTConfig, log *logger.Logger) (*MQTT, error) {
	topic := strings.TrimRight(cfg.Topic, "/")
	availTopic := topic + "/status"

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(availTopic, "offline", mqttQoS, true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if log != nil {
			log.Infow("mqtt_connected", "broker", cfg.Broker)
		}
		c.Publish(availTopic, mqttQoS, true, "online")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if log != nil {
			log.Errorw("mqtt_connection_lost", "err", err)
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}

	return &MQTT{
		client: client,
		topic:  topic,
		close:  func() { client.Disconnect(mqttDisconnectMs) },
	}, nil
}

func (m *MQTT) Notify(ctx context.Context, a Alarm) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alarm: %w", err)
	}

	topic := m.topic + "/" + strings.ToLower(a.Class.String())
	token := m.client.Publish(topic, mqttQoS, true, payload)

	timeout := mqttPublishTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.close != nil {
		m.close()
	}
}
