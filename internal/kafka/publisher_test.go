package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter запоминает сообщения вместо отправки в брокер.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w)
	report := Report{
		RunID:      "run-1",
		InputPath:  "data/orders_data.json",
		Counts:     map[string]int{"orders": 1, "customers": 1},
		Warnings:   2,
		FinishedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), report))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "run-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "X-Input-Path", msg.Headers[0].Key)
	assert.Equal(t, "data/orders_data.json", string(msg.Headers[0].Value))

	var got Report
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, report, got)
	assert.Contains(t, string(msg.Value), `"quality_warnings":2`)
}

func TestPublisher_PublishError(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := newPublisher(&fakeWriter{err: brokerErr})

	err := p.Publish(context.Background(), Report{RunID: "run-2"})

	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "ошибка отправки отчета в Kafka")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}

	require.NoError(t, newPublisher(w).Close())
	assert.True(t, w.closed)
}
