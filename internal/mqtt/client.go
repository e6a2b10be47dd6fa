package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type (
	// Client manages the broker connection. Bridge does the publishing and subscribing.
	Client struct {
		client mqtt.Client
		config ClientConfig
	}

	ClientConfig struct {
		Broker   string
		ClientID string
		Username string
		Password string
	}
)

func NewClient(config ClientConfig) (*Client, error) {
	slog.Debug(">>NewClient", "broker", config.Broker)
	defer slog.Debug("<<NewClient")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOnConnectHandler(connectHandler)
	opts.SetConnectionLostHandler(connectLostHandler)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	slog.Info("Connected to MQTT broker", "broker", config.Broker)

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Connection returns the underlying paho client for use by a Bridge.
func (c *Client) Connection() mqtt.Client {
	return c.client
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) Close() {
	c.client.Disconnect(250)
	slog.Info("Disconnected from MQTT broker")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	slog.Info("MQTT connection established")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	slog.Warn("MQTT connection lost", "error", err)
}
