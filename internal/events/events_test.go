package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	deadline bool
}

type fakeChannel struct {
	calls    []publishCall
	err      error
	closeErr error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, publishCall{exchange: exchange, key: key, msg: msg, deadline: hasDeadline})
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return f.closeErr
}

var publishedAt = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestPublisher(channel *fakeChannel) *AMQPPublisher {
	return &AMQPPublisher{
		channel:  channel,
		exchange: "ledger.events",
		now:      func() time.Time { return publishedAt },
	}
}

// -- AMQPPublisher tests --

func TestPublish_Message(t *testing.T) {
	channel := &fakeChannel{}
	publisher := newTestPublisher(channel)

	event := Event{
		Type:       AdjustmentRecorded,
		AccountID:  "VN1",
		OccurredAt: publishedAt,
		Payload:    map[string]string{"amount": "-12.50"},
	}
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, channel.calls, 1)
	call := channel.calls[0]
	assert.Equal(t, "ledger.events", call.exchange)
	assert.Equal(t, AdjustmentRecorded, call.key)
	assert.True(t, call.deadline)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, publishedAt, call.msg.Timestamp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(call.msg.Body, &decoded))
	assert.Equal(t, "VN1", decoded["accountId"])
	assert.Equal(t, AdjustmentRecorded, decoded["type"])
}

func TestPublish_Error(t *testing.T) {
	channel := &fakeChannel{err: amqp091.ErrClosed}
	publisher := newTestPublisher(channel)

	err := publisher.Publish(context.Background(), Event{Type: TransferCompleted})

	assert.ErrorIs(t, err, amqp091.ErrClosed)
	assert.Contains(t, err.Error(), TransferCompleted)
}

func TestClose_ReportsChannelError(t *testing.T) {
	channel := &fakeChannel{closeErr: errors.New("already closed")}
	publisher := newTestPublisher(channel)

	err := publisher.Close()

	assert.True(t, channel.closed)
	assert.ErrorContains(t, err, "close channel")
}

// -- NoopPublisher tests --

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	assert.NoError(t, publisher.Publish(context.Background(), Event{Type: WeeklyDigest}))
	assert.NoError(t, publisher.Close())
}
