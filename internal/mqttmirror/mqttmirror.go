// Package mqttmirror provides a one-way, publish-only mirror of fired
// triggers to an MQTT broker for external dashboards (SPEC_FULL's
// domain-stack addition). It never subscribes and nothing it publishes
// can feed back into the hub as a command — mirroring the teacher's
// internal/mqtt publisher's transport, stripped of Home Assistant
// discovery and the inbound subscription path this domain has no use
// for.
package mqttmirror

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/nugget/companion-hub/internal/config"
)

// Publisher mirrors fired trigger names to hub/triggers/<name>.
type Publisher struct {
	cfg    config.MQTTConfig
	logger *slog.Logger
	cm     *autopaho.ConnectionManager
}

// New builds a Publisher. Call Start to connect.
func New(cfg config.MQTTConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, logger: logger}
}

// Start connects to the configured broker. It does not block waiting
// for the connection to settle beyond a short grace period — autopaho
// keeps retrying in the background on failure.
func (p *Publisher) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(p.cfg.Broker)
	if err != nil {
		return fmt.Errorf("mqttmirror: parse broker url %q: %w", p.cfg.Broker, err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: p.cfg.Username,
		ConnectPassword: []byte(p.cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.logger.Info("mqttmirror connected to broker", "broker", p.cfg.Broker)
		},
		OnConnectError: func(err error) {
			p.logger.Warn("mqttmirror connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: "companion-hub-mirror",
		},
	}
	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqttmirror: connect: %w", err)
	}
	p.cm = cm

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		p.logger.Warn("mqttmirror initial connection timed out, will retry in background", "error", err)
	}
	return nil
}

// Stop disconnects from the broker.
func (p *Publisher) Stop(ctx context.Context) error {
	if p.cm == nil {
		return nil
	}
	return p.cm.Disconnect(ctx)
}

// topicFor builds the mirror topic for a trigger name, rooted at the
// configured prefix (default "hub", per config.applyDefaults).
func (p *Publisher) topicFor(name string) string {
	return p.cfg.TopicPrefix + "/triggers/" + name
}

// MirrorTrigger publishes a fired trigger's name at QoS 0. Failures are
// logged and absorbed: this is observational telemetry, never a control
// path back into the hub.
func (p *Publisher) MirrorTrigger(ctx context.Context, name string) {
	if p.cm == nil {
		return
	}
	if _, err := p.cm.Publish(ctx, &paho.Publish{
		Topic:   p.topicFor(name),
		Payload: []byte(name),
		QoS:     0,
	}); err != nil {
		p.logger.Debug("mqttmirror publish failed", "trigger", name, "error", err)
	}
}
