package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DEFAULT_COMMAND_TOPIC   = "monitor/{device_id}/command"
	DEFAULT_RESPONSE_TOPIC  = "monitor/{device_id}/response"
	DEFAULT_TELEMETRY_TOPIC = "monitor/{device_id}/telemetry"

	// matches the largest response buffer on the device
	RESPONSE_BUFFER_SIZE = 512

	QOS_AT_LEAST_ONCE byte = 1
)

type (
	// Connection is the subset of the paho client used by the bridge.
	Connection interface {
		Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
		Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
		Unsubscribe(topics ...string) mqtt.Token
	}

	CommandProcessor interface {
		ProcessCommand(cmd protocol.Command) protocol.Response
	}

	BridgeConfig struct {
		DeviceID       string
		CommandTopic   string
		ResponseTopic  string
		TelemetryTopic string
	}

	// Bridge answers commands arriving on the command topic and publishes
	// telemetry responses.
	Bridge struct {
		conn           Connection
		processor      CommandProcessor
		commandTopic   string
		responseTopic  string
		telemetryTopic string

		// responses still being published
		pending sync.WaitGroup
	}
)

func NewBridge(conn Connection, config BridgeConfig) *Bridge {
	if config.CommandTopic == "" {
		config.CommandTopic = DEFAULT_COMMAND_TOPIC
	}
	if config.ResponseTopic == "" {
		config.ResponseTopic = DEFAULT_RESPONSE_TOPIC
	}
	if config.TelemetryTopic == "" {
		config.TelemetryTopic = DEFAULT_TELEMETRY_TOPIC
	}

	return &Bridge{
		conn:           conn,
		commandTopic:   formatTopic(config.CommandTopic, config.DeviceID),
		responseTopic:  formatTopic(config.ResponseTopic, config.DeviceID),
		telemetryTopic: formatTopic(config.TelemetryTopic, config.DeviceID),
	}
}

// Start answers commands on the command topic with the processor.
func (b *Bridge) Start(processor CommandProcessor) error {
	slog.Debug(">>Start", "topic", b.commandTopic)
	defer slog.Debug("<<Start")

	b.processor = processor

	token := b.conn.Subscribe(b.commandTopic, QOS_AT_LEAST_ONCE, b.handleCommand)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.commandTopic, token.Error())
	}

	slog.Info("Subscribed to command topic", "topic", b.commandTopic)

	return nil
}

// Stop unsubscribes from the command topic and waits for in-flight responses.
func (b *Bridge) Stop() error {
	token := b.conn.Unsubscribe(b.commandTopic)
	b.pending.Wait()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", b.commandTopic, token.Error())
	}

	return nil
}

// Emit publishes a response on the telemetry topic.
func (b *Bridge) Emit(ctx context.Context, resp protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.publish(b.telemetryTopic, resp)
}

// handleCommand runs on the paho callback goroutine, so the response is
// published from its own goroutine rather than waiting on the QoS 1 ack here.
func (b *Bridge) handleCommand(_ mqtt.Client, msg mqtt.Message) {
	slog.Debug(">>handleCommand", "topic", msg.Topic())
	defer slog.Debug("<<handleCommand")

	var resp protocol.Response
	cmd, err := protocol.ParseCommand(string(msg.Payload()))
	if err != nil {
		slog.Warn("invalid command received", "payload", string(msg.Payload()), "error", err)
		resp = protocol.ErrorResponse{Message: err.Error()}
	} else {
		resp = b.processor.ProcessCommand(cmd)
	}

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()

		if err := b.publish(b.responseTopic, resp); err != nil {
			slog.Error("failed to publish command response", "kind", protocol.Kind(resp), "error", err)
		}
	}()
}

func (b *Bridge) publish(topic string, resp protocol.Response) error {
	payload, err := protocol.EncodeBounded(resp, RESPONSE_BUFFER_SIZE)
	if err != nil {
		return err
	}

	token := b.conn.Publish(topic, QOS_AT_LEAST_ONCE, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}

	return nil
}

func formatTopic(topicPattern, deviceID string) string {
	return strings.ReplaceAll(topicPattern, "{device_id}", deviceID)
}
