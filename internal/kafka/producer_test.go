package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/jittakal/kafanalytics/internal/config"
	apperrors "github.com/jittakal/kafanalytics/internal/errors"
	"github.com/jittakal/kafanalytics/internal/events"
	"github.com/jittakal/kafanalytics/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mock := mocks.NewSyncProducer(t, nil)
	p := newProducer(mock, config.EventConfig{Source: "test-source"}, zap.NewNop())
	p.newID = func() string { return "evt-1" }
	return p, mock
}

func sampleEvent() *event.Event {
	return event.New(map[string]interface{}{
		"userId":    "u1",
		"deviceId":  "d1",
		"eventType": "purchase",
		"time":      int64(1700000000000),
		"price":     "9.5",
		"Coupon":    "WELCOME",
	})
}

func headerMap(msg *sarama.ProducerMessage) map[string]string {
	h := make(map[string]string, len(msg.Headers))
	for _, rh := range msg.Headers {
		h[string(rh.Key)] = string(rh.Value)
	}
	return h
}

func TestProduceEvent(t *testing.T) {
	p, mock := newTestProducer(t)

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "analytics", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "u1", string(key))

		headers := headerMap(msg)
		assert.Equal(t, "1.0", headers[events.HeaderSpecVersion])
		assert.Equal(t, events.CloudEventType, headers[events.HeaderType])
		assert.Equal(t, "test-source", headers[events.HeaderSource])
		assert.Equal(t, "evt-1", headers[events.HeaderID])
		assert.Equal(t, "purchase", headers[events.HeaderSubject])

		value, err := msg.Value.Encode()
		require.NoError(t, err)

		var envelope struct {
			SpecVersion string                 `json:"specversion"`
			ID          string                 `json:"id"`
			Source      string                 `json:"source"`
			Type        string                 `json:"type"`
			Subject     string                 `json:"subject"`
			Time        string                 `json:"time"`
			Data        map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(value, &envelope))

		assert.Equal(t, "evt-1", envelope.ID)
		assert.Equal(t, "purchase", envelope.Subject)
		assert.Equal(t, "2023-11-14T22:13:20Z", envelope.Time)
		assert.Equal(t, "u1", envelope.Data["user_id"])
		assert.Equal(t, "d1", envelope.Data["device_id"])
		assert.Equal(t, 9.5, envelope.Data["price"])
		assert.Equal(t, map[string]interface{}{"Coupon": "WELCOME"}, envelope.Data["event_properties"])
		return nil
	})

	id, err := p.ProduceEvent(context.Background(), "analytics", sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", id)

	require.NoError(t, p.Close())
}

func TestProduceEvent_DeviceKeyFallback(t *testing.T) {
	p, mock := newTestProducer(t)

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "d1" {
			return errors.New("expected device_id as message key")
		}
		return nil
	})

	e := sampleEvent().UnsetProperty("userId")
	_, err := p.ProduceEvent(context.Background(), "analytics", e)
	require.NoError(t, err)

	require.NoError(t, p.Close())
}

func TestProduceEvent_SendFailure(t *testing.T) {
	p, mock := newTestProducer(t)
	sendErr := errors.New("broker down")
	mock.ExpectSendMessageAndFail(sendErr)

	_, err := p.ProduceEvent(context.Background(), "analytics", sampleEvent())
	require.Error(t, err)

	var publishErr *apperrors.PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, "analytics", publishErr.Topic)
	assert.Equal(t, "evt-1", publishErr.EventID)
	assert.ErrorIs(t, err, sendErr)

	require.NoError(t, p.Close())
}

func TestProduceEvent_ValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		event   *event.Event
		wantErr error
	}{
		{
			name:    "nil event",
			event:   nil,
			wantErr: apperrors.ErrNilEvent,
		},
		{
			name:    "missing event type",
			event:   event.New(map[string]interface{}{"userId": "u1"}),
			wantErr: apperrors.ErrMissingEventType,
		},
		{
			name:    "missing identity",
			event:   event.New(map[string]interface{}{"eventType": "page_view"}),
			wantErr: apperrors.ErrMissingIdentity,
		},
		{
			name:    "empty identity",
			event:   event.New(map[string]interface{}{"eventType": "page_view", "user_id": ""}),
			wantErr: apperrors.ErrMissingIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProducer(t)

			_, err := p.ProduceEvent(context.Background(), "analytics", tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperrors.IsValidationError(err))

			require.NoError(t, p.Close())
		})
	}
}

func TestProduceEvent_Cancelled(t *testing.T) {
	p, _ := newTestProducer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProduceEvent(ctx, "analytics", sampleEvent())
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, p.Close())
}

func TestProduceEvent_AfterClose(t *testing.T) {
	p, _ := newTestProducer(t)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "closing twice should be a no-op")

	_, err := p.ProduceEvent(context.Background(), "analytics", sampleEvent())
	assert.ErrorIs(t, err, apperrors.ErrProducerClosed)
}

func TestNewProducer_EnvelopeDefaults(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := newProducer(mock, config.EventConfig{}, zap.NewNop())

	assert.Equal(t, events.CloudEventSource, p.envelope.Source)
	assert.Equal(t, events.CloudEventType, p.envelope.Type)

	require.NoError(t, p.Close())
}
