package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsentinel/sentryview/internal/model"
)

// feedServer upgrades one connection and pushes the given raw messages.
func feedServer(t *testing.T, messages []string, closeAfter bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		for _, msg := range messages {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		}
		if closeAfter {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscribe_DeliversValidAlertsInOrder(t *testing.T) {
	srv := feedServer(t, []string{
		`{"incident_id":"INC-1","threat_score":90,"main_event":"Scan"}`,
		`{"incident_id":"INC-2","threat_score":40,"main_event":"Flood"}`,
	}, false)

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)
	defer sub.Close()

	first := <-sub.Alerts()
	second := <-sub.Alerts()
	assert.Equal(t, "INC-1", first.IncidentID)
	assert.Equal(t, "INC-2", second.IncidentID)
}

func TestSubscribe_DiscardsInvalidWithoutClosing(t *testing.T) {
	srv := feedServer(t, []string{
		`not json at all`,
		`{"foo":"bar"}`,
		`{"incident_id":"INC-9","threat_score":"high"}`,
		`{"incident_id":"INC-OK","threat_score":75}`,
	}, false)

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)
	defer sub.Close()

	// Only the last message is valid; the garbage before it must not have
	// killed the stream.
	select {
	case alert := <-sub.Alerts():
		assert.Equal(t, "INC-OK", alert.IncidentID)
	case <-time.After(2 * time.Second):
		t.Fatal("valid alert never arrived")
	}
	assert.NoError(t, sub.Err())
}

func TestSubscribe_CleanCloseEndsChannel(t *testing.T) {
	srv := feedServer(t, []string{
		`{"incident_id":"INC-1","threat_score":10}`,
	}, true)

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)
	defer sub.Close()

	<-sub.Alerts()
	select {
	case _, ok := <-sub.Alerts():
		assert.False(t, ok, "channel should be closed after server close")
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed")
	}
	assert.NoError(t, sub.Err(), "normal closure is not a stream error")
}

func TestSubscribe_TransportErrorIsReported(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Drop the connection without a close handshake.
		_ = conn.UnderlyingConn().Close()
	}))
	defer srv.Close()

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)
	defer sub.Close()

	select {
	case _, ok := <-sub.Alerts():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed")
	}
	assert.Error(t, sub.Err())
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	srv := feedServer(t, nil, false)

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)

	sub.Close()
	sub.Close() // must not panic
}

func TestRun_FillsWindowAndClosesOnCancel(t *testing.T) {
	srv := feedServer(t, []string{
		`{"incident_id":"INC-1","threat_score":50}`,
		`{"incident_id":"INC-2","threat_score":60}`,
	}, false)

	sub, err := Subscribe(context.Background(), wsURL(srv), discard())
	require.NoError(t, err)

	window := NewWindow(10)
	seen := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- Run(ctx, sub, window, func(a model.AlertSummary) {
			seen <- a.IncidentID
		})
	}()

	assert.Equal(t, "INC-1", <-seen)
	assert.Equal(t, "INC-2", <-seen)
	assert.Equal(t, 2, window.Len())
	assert.Equal(t, "INC-2", window.Snapshot()[0].IncidentID)

	cancel()
	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
