package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentinel/sentryview/internal/model"
)

func TestPublisher_PublishesAlertJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewPublisher(ctx, mr.Addr(), "netsentinel:alerts")
	require.NoError(t, err)
	defer func() { _ = pub.Close() }()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	sub := rdb.Subscribe(ctx, "netsentinel:alerts")
	defer func() { _ = sub.Close() }()

	// Wait for the subscription to be established before publishing.
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	alert := model.AlertSummary{
		IncidentID:  "INC-1",
		ThreatScore: 90,
		MainEvent:   "ML Anomaly Detected",
	}
	require.NoError(t, pub.Publish(ctx, alert))

	select {
	case msg := <-sub.Channel():
		var got model.AlertSummary
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, alert.IncidentID, got.IncidentID)
		assert.Equal(t, alert.ThreatScore, got.ThreatScore)
	case <-time.After(2 * time.Second):
		t.Fatal("published alert never arrived")
	}
}

func TestPublisher_SetChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewPublisher(ctx, mr.Addr(), "old")
	require.NoError(t, err)
	defer func() { _ = pub.Close() }()

	assert.Equal(t, "old", pub.Channel())
	pub.SetChannel("new")
	assert.Equal(t, "new", pub.Channel())
}

func TestNewPublisher_BadAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewPublisher(ctx, "127.0.0.1:1", "ch")
	require.Error(t, err)
}
