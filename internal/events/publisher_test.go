package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"go.uber.org/zap/zaptest"
)

// mockWriter records messages instead of talking to a broker.
type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w, zaptest.NewLogger(t))

	prague := city.City{Name: "Prague", CountryCode: "CZ", Lat: 50.08, Lon: 14.43}
	require.NoError(t, p.Publish(context.Background(), NewEvent(TypeCityAdded, prague)))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "Prague,CZ", string(w.messages[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &got))
	assert.Equal(t, TypeCityAdded, got.Type)
	assert.Equal(t, prague, got.City)
	assert.NotEmpty(t, got.Timestamp)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker unavailable")}
	p := NewKafkaPublisherWithWriter(w, zaptest.NewLogger(t))

	err := p.Publish(context.Background(), NewEvent(TypeCityRemoved, city.City{Name: "Boston", CountryCode: "US"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city.removed")
}

func TestNew_DisabledIsNop(t *testing.T) {
	p := New(config.EventsConfig{Enabled: false, Brokers: []string{"localhost:9092"}}, zaptest.NewLogger(t))
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}
