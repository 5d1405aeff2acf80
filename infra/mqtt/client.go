// Package mqtt publishes journal records to an MQTT broker so that other
// services can follow comparisons, plans and rate refreshes.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kilianp07/evcharge/core/monitoring"
	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/infra/logger"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	// Broker is the broker URL. Empty disables publishing.
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	// RetainRates keeps the last rate refresh on the broker for late joiners.
	RetainRates bool        `json:"retain_rates"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	LWTPayload  string      `json:"lwt_payload"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills the client id and topic prefix.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "evcharge"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "evcharge"
	}
	if c.LWTPayload == "" {
		c.LWTPayload = "offline"
	}
}

// Validate checks the QoS level and the TLS file settings.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		return fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	return nil
}

// StatusTopic is the retained online/offline topic.
func (c Config) StatusTopic() string { return c.TopicPrefix + "/status" }

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher publishes records under TopicPrefix/<kind>.
type Publisher struct {
	cli        pahoClient
	cfg        Config
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewPublisher connects to the broker and announces itself on the status
// topic. The broker publishes LWTPayload there if the connection drops.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p := &Publisher{
		cli:        c,
		cfg:        cfg,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if err := p.publish(cfg.StatusTopic(), true, []byte("online")); err != nil {
		log.Warnf("status publish: %v", err)
	}
	return p, nil
}

// NewClientOptions builds paho options from cfg.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.TopicPrefix != "" {
		opts.SetWill(cfg.StatusTopic(), cfg.LWTPayload, cfg.QoS, true)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, errors.New("ca bundle holds no certificate")
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Topic returns the topic records of kind are published on.
func (p *Publisher) Topic(kind string) string {
	return strings.TrimSuffix(p.cfg.TopicPrefix, "/") + "/" + kind
}

// PublishRecord publishes the record payload. Rate refreshes are retained
// when RetainRates is set.
func (p *Publisher) PublishRecord(rec journal.Record) error {
	retain := p.cfg.RetainRates && rec.Kind == journal.KindRates
	if err := p.publish(p.Topic(rec.Kind), retain, rec.Payload); err != nil {
		coremon.CaptureException(err, map[string]string{"module": "mqtt", "kind": rec.Kind})
		return err
	}
	return nil
}

func (p *Publisher) publish(topic string, retain bool, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			return nil
		}
		if attempt < p.maxRetries {
			p.logger.Warnf("publish %s retry %d: %v", topic, attempt+1, err)
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Disconnect marks the publisher offline and closes the connection.
func (p *Publisher) Disconnect() {
	if p.cli == nil {
		return
	}
	if p.cli.IsConnected() {
		_ = p.publish(p.cfg.StatusTopic(), true, []byte(p.cfg.LWTPayload))
	}
	p.cli.Disconnect(250)
}

// Start publishes every journal.Record seen on bus until ctx is canceled.
func (p *Publisher) Start(ctx context.Context, bus *eventbus.Bus) <-chan struct{} {
	return eventbus.Consume[eventbus.Event](ctx, bus, func(ev eventbus.Event) {
		if rec, ok := ev.(journal.Record); ok {
			if err := p.PublishRecord(rec); err != nil {
				p.logger.Errorf("%v", err)
			}
		}
	})
}
