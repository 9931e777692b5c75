package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

// HeaderCorrelationID carries the originating request id on every message.
const HeaderCorrelationID = "X-Correlation-ID"

// Config contains publisher configuration.
type Config struct {
	URL            string
	Name           string
	Originator     string
	JetStream      bool
	PublishTimeout time.Duration
}

// Envelope is the bus message format shared by platform services.
type Envelope struct {
	Topic      string          `json:"topic"`
	Originator string          `json:"originator"`
	Timestamp  time.Time       `json:"timestamp"`
	MimeType   string          `json:"mime-type"`
	Payload    json.RawMessage `json:"payload"`
}

type sendFunc func(ctx context.Context, msg *nats.Msg) error

// Publisher implements outbound.EventPublisherPort over NATS.
type Publisher struct {
	conn       *nats.Conn
	send       sendFunc
	originator string
	timeout    time.Duration
	logger     *zap.Logger
}

// Connect dials NATS and returns a publisher. With JetStream enabled messages are
// acknowledged by the stream; otherwise core NATS publishing is used.
func Connect(cfg *Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("nats")

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	send := func(_ context.Context, msg *nats.Msg) error {
		return nc.PublishMsg(msg)
	}
	if cfg.JetStream {
		js, err := nc.JetStream()
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("jetstream context: %w", err)
		}
		send = func(ctx context.Context, msg *nats.Msg) error {
			_, err := js.PublishMsg(msg, nats.Context(ctx))
			return err
		}
	}

	p := newPublisher(send, cfg.Originator, cfg.PublishTimeout, log)
	p.conn = nc
	return p, nil
}

func newPublisher(send sendFunc, originator string, timeout time.Duration, logger *zap.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		send:       send,
		originator: originator,
		timeout:    timeout,
		logger:     logger,
	}
}

// Compile-time interface check
var _ outbound.EventPublisherPort = (*Publisher)(nil)

// Publish wraps payload in an Envelope and publishes it on topic.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any, correlationID string) error {
	if p == nil || p.send == nil {
		return errors.New("nil publisher")
	}

	msg, err := p.buildMsg(topic, payload, correlationID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.send(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("correlation_id", correlationID),
	)
	return nil
}

func (p *Publisher) buildMsg(topic string, payload any, correlationID string) (*nats.Msg, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	data, err := json.Marshal(Envelope{
		Topic:      topic,
		Originator: p.originator,
		Timestamp:  time.Now().UTC(),
		MimeType:   "application/json",
		Payload:    raw,
	})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	msg := nats.NewMsg(topic)
	msg.Data = data
	if correlationID != "" {
		msg.Header.Set(HeaderCorrelationID, correlationID)
	}
	return msg, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
