package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/jittakal/kafanalytics/internal/config"
	apperrors "github.com/jittakal/kafanalytics/internal/errors"
	"github.com/jittakal/kafanalytics/internal/events"
	"github.com/jittakal/kafanalytics/pkg/event"
	"go.uber.org/zap"
)

// Producer publishes analytics events to Kafka wrapped in CloudEvents
type Producer struct {
	producer sarama.SyncProducer
	envelope config.EventConfig
	logger   *zap.Logger
	newID    func() string
	mu       sync.RWMutex
	closed   bool
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg config.KafkaConfig, envelope config.EventConfig, logger *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	// Producer settings
	saramaConfig.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Producer.RequiredAcks)
	saramaConfig.Producer.Compression = parseCompressionType(cfg.Producer.CompressionType)
	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Idempotent = cfg.Producer.IdempotentWrites
	saramaConfig.Producer.Retry.Max = cfg.Producer.RetryMax
	saramaConfig.Producer.Retry.Backoff = time.Duration(cfg.Producer.RetryBackoffMs) * time.Millisecond

	// Idempotent producer requires Net.MaxOpenRequests to be 1
	if cfg.Producer.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Configure security
	if err := configureSecurity(saramaConfig, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to configure security: %w", err)
	}

	// Create producer
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka producer created successfully",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("securityProtocol", cfg.SecurityProtocol),
	)

	return newProducer(producer, envelope, logger), nil
}

// newProducer wraps an existing sarama producer
func newProducer(producer sarama.SyncProducer, envelope config.EventConfig, logger *zap.Logger) *Producer {
	if envelope.Source == "" {
		envelope.Source = events.CloudEventSource
	}
	if envelope.Type == "" {
		envelope.Type = events.CloudEventType
	}
	return &Producer{
		producer: producer,
		envelope: envelope,
		logger:   logger,
		newID:    func() string { return uuid.New().String() },
	}
}

// ProduceEvent validates an analytics event and publishes its exported
// mapping as the data of a CloudEvent. It returns the CloudEvent ID.
func (p *Producer) ProduceEvent(ctx context.Context, topic string, e *event.Event) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", apperrors.ErrProducerClosed
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("produce cancelled: %w", err)
	}

	if err := Validate(e); err != nil {
		return "", err
	}

	ce, err := p.toCloudEvent(e)
	if err != nil {
		return "", err
	}

	// Serialize CloudEvent to JSON
	eventBytes, err := json.Marshal(ce)
	if err != nil {
		return "", fmt.Errorf("failed to marshal CloudEvent: %w", err)
	}

	// Create Kafka message
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(partitionKey(e)),
		Value: sarama.ByteEncoder(eventBytes),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte(events.HeaderSpecVersion),
				Value: []byte(ce.SpecVersion()),
			},
			{
				Key:   []byte(events.HeaderType),
				Value: []byte(ce.Type()),
			},
			{
				Key:   []byte(events.HeaderSource),
				Value: []byte(ce.Source()),
			},
			{
				Key:   []byte(events.HeaderID),
				Value: []byte(ce.ID()),
			},
			{
				Key:   []byte(events.HeaderSubject),
				Value: []byte(ce.Subject()),
			},
		},
	}

	// Send message
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return "", &apperrors.PublishError{Topic: topic, EventID: ce.ID(), Err: err}
	}

	p.logger.Info("Event produced successfully",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("eventId", ce.ID()),
		zap.String("eventType", ce.Subject()),
		zap.String("source", ce.Source()),
		zap.Time("timestamp", ce.Time()),
	)

	return ce.ID(), nil
}

// toCloudEvent builds the CloudEvent envelope for an analytics event
func (p *Producer) toCloudEvent(e *event.Event) (cloudevents.Event, error) {
	eventType, _ := e.GetString(event.FieldEventType)

	ce := cloudevents.NewEvent()
	ce.SetSpecVersion(cloudevents.VersionV1)
	ce.SetID(p.newID())
	ce.SetType(p.envelope.Type)
	ce.SetSource(p.envelope.Source)
	ce.SetSubject(eventType)
	ce.SetTime(eventTime(e))

	if err := ce.SetData(events.ContentTypeJSON, e.ToArray()); err != nil {
		return ce, fmt.Errorf("failed to set CloudEvent data: %w", err)
	}
	return ce, nil
}

// Validate checks the fields the ingestion API requires on every event
func Validate(e *event.Event) error {
	if e == nil {
		return &apperrors.ValidationError{Field: "event", Err: apperrors.ErrNilEvent}
	}
	if eventType, _ := e.GetString(event.FieldEventType); eventType == "" {
		return &apperrors.ValidationError{Field: event.FieldEventType, Err: apperrors.ErrMissingEventType}
	}
	userID, _ := e.GetString(event.FieldUserID)
	deviceID, _ := e.GetString(event.FieldDeviceID)
	if userID == "" && deviceID == "" {
		return &apperrors.ValidationError{Field: event.FieldUserID, Err: apperrors.ErrMissingIdentity}
	}
	return nil
}

// partitionKey keeps a user's events on one partition
func partitionKey(e *event.Event) string {
	if userID, _ := e.GetString(event.FieldUserID); userID != "" {
		return userID
	}
	deviceID, _ := e.GetString(event.FieldDeviceID)
	return deviceID
}

// eventTime uses the event's millisecond timestamp when set
func eventTime(e *event.Event) time.Time {
	if ms, ok := e.GetInt(event.FieldTime); ok && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	return time.Now().UTC()
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
