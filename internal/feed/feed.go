// Package feed owns the live alert stream: one WebSocket subscription per
// consumer, shape validation at the boundary, and the bounded recent-alert
// window.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netsentinel/sentryview/internal/metrics"
	"github.com/netsentinel/sentryview/internal/model"
)

const closeGracePeriod = time.Second

// Subscription is one live connection to the backend's alert stream. It is
// owned by the consumer that opened it and must be closed on teardown;
// Close is idempotent. A subscription does not reconnect: once the stream
// errors, the alert channel is closed and the feed is dead for the rest of
// the session.
type Subscription struct {
	conn   *websocket.Conn
	alerts chan model.AlertSummary
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Subscribe dials the stream endpoint and starts reading. The returned
// subscription delivers accepted summaries on Alerts until the stream ends.
func Subscribe(ctx context.Context, url string, logger *slog.Logger) (*Subscription, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing feed %s: %w", url, err)
	}

	s := &Subscription{
		conn:   conn,
		alerts: make(chan model.AlertSummary, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.readLoop()

	logger.Info("live feed connected", "url", url)
	return s, nil
}

// Alerts delivers validated summaries in arrival order. The channel is
// closed when the stream ends, whether by error or by Close.
func (s *Subscription) Alerts() <-chan model.AlertSummary {
	return s.alerts
}

// Err reports the stream-level error that ended the subscription, if any.
// Nil while the stream is live or after a clean Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection. Safe to call multiple times and
// concurrently with a failing read loop.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		deadline := time.Now().Add(closeGracePeriod)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
	})
}

// readLoop processes inbound messages until the connection dies. Malformed
// or shape-invalid messages are discarded without closing the stream; only
// a transport-level read error ends the loop.
func (s *Subscription) readLoop() {
	defer close(s.alerts)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("live feed closed")
				return
			}
			s.setErr(err)
			s.logger.Error("live feed stream error", "error", err)
			return
		}

		alert, err := model.ParseAlert(data)
		if err != nil {
			metrics.FeedMessages.WithLabelValues("rejected").Inc()
			s.logger.Debug("discarding invalid feed message", "error", err)
			continue
		}

		metrics.FeedMessages.WithLabelValues("accepted").Inc()
		select {
		case s.alerts <- alert:
		case <-s.done:
			return
		}
	}
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Run pumps a subscription into a window until the stream ends or ctx is
// done, invoking onAlert (if non-nil) after each accepted push. It closes
// the subscription on the way out in every case.
func Run(ctx context.Context, sub *Subscription, window *Window, onAlert func(model.AlertSummary)) error {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-sub.Alerts():
			if !ok {
				return sub.Err()
			}
			window.Push(alert)
			if onAlert != nil {
				onAlert(alert)
			}
		}
	}
}
