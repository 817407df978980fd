// Package mqttsink is the paho.mqtt.golang-backed implementation of
// publish.Sink.
package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nattery/edge-bridge/internal/publish"
)

// Config carries everything the client needs to connect and address its
// topics. It intentionally stands alone rather than embedding
// internal/config.Config.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retain      bool
	Keepalive   time.Duration
	TopicPrefix string
	DeviceID    string
	DeviceType  string
}

func (c Config) topic(suffix string) string {
	return fmt.Sprintf("%s/%s/%s", c.TopicPrefix, c.DeviceID, suffix)
}

// Client is the production publish.Sink.
type Client struct {
	cfg    Config
	mc     mqtt.Client
	submit publish.CommandSubmitter

	connected atomic.Bool
}

// New builds and connects a Client. submit is invoked for every message
// received on the device-specific or broadcast command topic; it is
// bound once at construction and never mutated afterwards.
func New(cfg Config, submit publish.CommandSubmitter) (*Client, error) {
	c := &Client{cfg: cfg, submit: submit}

	willPayload, _ := json.Marshal(map[string]any{
		"device_id": cfg.DeviceID,
		"status":    "offline",
		"reason":    "unexpected_disconnect",
	})

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(10 * time.Second).
		SetWill(cfg.topic("status"), string(willPayload), cfg.QoS, true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.Keepalive > 0 {
		opts.SetKeepAlive(cfg.Keepalive)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		c.connected.Store(true)
		slog.Info("mqtt connected", "broker", cfg.Broker)
		if err := c.subscribeCommands(); err != nil {
			slog.Error("mqtt command subscribe failed", "err", err)
		}
		if err := c.PublishStatus(context.Background(), map[string]any{"status": "online"}); err != nil {
			slog.Warn("mqtt online status publish failed", "err", err)
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.connected.Store(false)
		slog.Warn("mqtt connection lost", "err", err)
	})

	c.mc = mqtt.NewClient(opts)
	token := c.mc.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect: timed out waiting for broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return c, nil
}

func (c *Client) subscribeCommands() error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		id, err := c.submit(msg.Payload())
		if err != nil {
			slog.Warn("command submit failed", "topic", msg.Topic(), "err", err)
			return
		}
		slog.Info("command queued", "command_id", id, "topic", msg.Topic())
	}

	deviceTopic := c.cfg.topic("commands")
	broadcastTopic := c.cfg.TopicPrefix + "/broadcast/commands"

	if token := c.mc.Subscribe(deviceTopic, c.cfg.QoS, handler); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := c.mc.Subscribe(broadcastTopic, c.cfg.QoS, handler); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *Client) publish(ctx context.Context, topic string, payload map[string]any, retain bool) error {
	payload["device_id"] = c.cfg.DeviceID
	payload["device_type"] = c.cfg.DeviceType
	payload["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := c.mc.Publish(topic, c.cfg.QoS, retain, body)
	select {
	case <-tokenDone(token):
	case <-ctx.Done():
		return ctx.Err()
	}
	return token.Error()
}

func tokenDone(token mqtt.Token) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	return done
}

// PublishData implements publish.Sink.
func (c *Client) PublishData(ctx context.Context, data map[string]any) error {
	return c.publish(ctx, c.cfg.topic("data"), map[string]any{"data": data}, false)
}

// PublishStatus implements publish.Sink.
func (c *Client) PublishStatus(ctx context.Context, status map[string]any) error {
	payload := make(map[string]any, len(status)+1)
	for k, v := range status {
		payload[k] = v
	}
	if _, ok := payload["status"]; !ok {
		payload["status"] = "online"
	}
	return c.publish(ctx, c.cfg.topic("status"), payload, true)
}

// PublishAlert implements publish.Sink.
func (c *Client) PublishAlert(ctx context.Context, alertType, message, severity string) error {
	return c.publish(ctx, c.cfg.topic("alerts"), map[string]any{
		"alert_type": alertType,
		"message":    message,
		"severity":   severity,
	}, false)
}

// PublishCommandResponse implements publish.Sink.
func (c *Client) PublishCommandResponse(ctx context.Context, commandID string, success bool, result any, errMsg string) error {
	return c.publish(ctx, c.cfg.topic("commands/response"), map[string]any{
		"command_id": commandID,
		"success":    success,
		"result":     result,
		"error":      errMsg,
	}, false)
}

// Connected implements publish.Sink.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close(ctx context.Context) {
	if c.connected.Load() {
		_ = c.publish(ctx, c.cfg.topic("status"), map[string]any{
			"status": "offline",
			"reason": "graceful_shutdown",
		}, true)
	}
	c.mc.Disconnect(250)
}
