package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type Config struct {
	Brokers      []string      `env:"KAFKA_BROKERS" env-separator:","`
	Topic        string        `env:"KAFKA_INTENT_TOPIC" env-default:"transaction-action-intents"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" env-default:"10s"`
}

// Enabled reports whether at least one broker is configured.
func (c Config) Enabled() bool {
	for _, b := range c.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// IntentEvent is the wire shape of one side-effect intent.
type IntentEvent struct {
	IntentID      uint            `json:"intent_id"`
	TransactionID uint            `json:"transaction_id"`
	CompletionID  uint            `json:"completion_id"`
	ActionCode    string          `json:"action_code"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempt       int             `json:"attempt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes intents to a single topic keyed by transaction id, so
// every intent of one transaction lands on the same partition in order.
type Publisher struct {
	log          *logger.Logger
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
}

func NewPublisher(log *logger.Logger, cfg Config) (*Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	var brokers []string
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, fmt.Errorf("missing KAFKA_INTENT_TOPIC")
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newPublisher(log, w, topic, cfg.WriteTimeout), nil
}

func newPublisher(log *logger.Logger, w messageWriter, topic string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{
		log:          log.With("client", "KafkaIntentPublisher", "topic", topic),
		writer:       w,
		topic:        topic,
		writeTimeout: timeout,
	}
}

func (p *Publisher) Name() string { return "kafka" }

// Dispatch publishes one intent. A nil return means the broker acknowledged it.
func (p *Publisher) Dispatch(ctx context.Context, intent *types.ActionIntent) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("kafka publisher not initialized")
	}
	if intent == nil {
		return fmt.Errorf("nil intent")
	}
	payload := json.RawMessage(intent.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	value, err := json.Marshal(IntentEvent{
		IntentID:      intent.ID,
		TransactionID: intent.TransactionID,
		CompletionID:  intent.CompletionID,
		ActionCode:    intent.ActionCode,
		Kind:          string(intent.Kind),
		Payload:       payload,
		CreatedAt:     intent.CreatedAt,
		Attempt:       intent.Attempts + 1,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	msg := kafkago.Message{
		Key:   []byte(strconv.FormatUint(uint64(intent.TransactionID), 10)),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(intent.Kind)},
			{Key: "action_code", Value: []byte(intent.ActionCode)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write intent %d: %w", intent.ID, err)
	}
	p.log.Debug("Intent published", "intent_id", intent.ID, "kind", intent.Kind)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
