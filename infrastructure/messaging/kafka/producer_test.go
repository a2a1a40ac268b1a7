package kafka

import (
	"context"
	"errors"
	"testing"

	"fulfillment/infrastructure/persistence/mysql"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherKeysByAggregate(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"event_type":"order.paid"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	p := NewPublisher(producer, "fulfillment.events")
	err := p.Publish(context.Background(), mysql.OutboxMessage{
		ID:          "evt-1",
		AggregateID: "order-1",
		EventType:   "order.paid",
		Payload:     `{"event_type":"order.paid"}`,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublisherSurfacesBrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(producer, "fulfillment.events")
	err := p.Publish(context.Background(), mysql.OutboxMessage{ID: "evt-1", AggregateID: "order-1", Payload: "{}"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestHeaderCarrier(t *testing.T) {
	var c saramaHeaderCarrier
	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
	assert.Empty(t, c.Get("missing"))
}
