package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Fields(t *testing.T) {
	type IdentityData struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	data := IdentityData{ID: "id-1234", Email: "alice@example.com"}
	event, err := NewEvent("identity.registered", "id-1234", "identity", "identity-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "identity.registered", event.EventType)
	assert.Equal(t, "id-1234", event.AggregateID)
	assert.Equal(t, "identity", event.AggregateType)
	assert.Equal(t, "identity-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)

	var roundTripped IdentityData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("test.event", "agg-1", "test", "test-service", make(chan int))
	require.Error(t, err)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "svc", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("corr-xyz")
	assert.Same(t, event, result, "WithCorrelationID should return the same event for chaining")
	assert.Equal(t, "corr-xyz", event.CorrelationID)
}

func TestEvent_UnmarshalData(t *testing.T) {
	type RoleChangePayload struct {
		PreviousRole string `json:"previous_role"`
		NewRole      string `json:"new_role"`
	}

	payload := RoleChangePayload{PreviousRole: "Customer", NewRole: "Mechanic"}
	event, err := NewEvent("identity.role_changed", "id-1234", "identity", "identity-service", payload)
	require.NoError(t, err)

	var target RoleChangePayload
	require.NoError(t, event.UnmarshalData(&target))
	assert.Equal(t, payload, target)
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{broken json`))
	require.Error(t, err)

	_, err = UnmarshalEvent([]byte{})
	require.Error(t, err)
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestNewProducer_CreatesAndCloses(t *testing.T) {
	// NewProducer does not connect immediately, so no broker is needed.
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	p := NewProducer(cfg, nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	assert.NoError(t, p.Close())
}

func TestProducer_Ping_NoBrokers(t *testing.T) {
	p := NewProducer(ProducerConfig{}, nil)
	err := p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kafka brokers configured")
}
