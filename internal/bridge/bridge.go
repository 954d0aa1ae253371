// Package bridge runs the headless re-publisher daemon: it holds one live
// feed subscription and forwards every accepted alert to a Redis channel,
// optionally serving Prometheus metrics and hot-reloading its config.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/netsentinel/sentryview/internal/config"
	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/metrics"
	"github.com/netsentinel/sentryview/internal/model"
)

// Bridge wires the live feed into a Redis publisher.
type Bridge struct {
	cfg     *config.Config
	cfgPath string
	pub     *Publisher
	logger  *slog.Logger
}

// New creates a bridge from config. cfgPath may be empty to disable
// hot-reload.
func New(ctx context.Context, cfg *config.Config, cfgPath string, logger *slog.Logger) (*Bridge, error) {
	pub, err := NewPublisher(ctx, cfg.Bridge.RedisAddr, cfg.Bridge.Channel)
	if err != nil {
		return nil, err
	}
	return &Bridge{cfg: cfg, cfgPath: cfgPath, pub: pub, logger: logger}, nil
}

// Run blocks until the feed dies or ctx is cancelled. The feed is not
// reconnected on stream error; the daemon exits and leaves restart policy
// to the supervisor.
func (b *Bridge) Run(ctx context.Context) error {
	defer func() { _ = b.pub.Close() }()

	if bind := b.cfg.Bridge.MetricsBind; bind != "" {
		go b.serveMetrics(ctx, bind)
	}
	if b.cfgPath != "" {
		go b.watchConfig(ctx)
	}

	sub, err := feed.Subscribe(ctx, b.cfg.FeedURL(), b.logger)
	if err != nil {
		return err
	}

	window := feed.NewWindow(b.cfg.Feed.Window)
	err = feed.Run(ctx, sub, window, func(alert model.AlertSummary) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.pub.Publish(pubCtx, alert); err != nil {
			b.logger.Warn("republish failed", "incident_id", alert.IncidentID, "error", err)
			return
		}
		b.logger.Debug("alert republished",
			"incident_id", alert.IncidentID, "channel", b.pub.Channel())
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (b *Bridge) serveMetrics(ctx context.Context, bind string) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         bind,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	b.logger.Info("metrics listener started", "addr", bind)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		b.logger.Error("metrics listener failed", "error", err)
	}
}

// watchConfig reloads the bridge channel when the config file changes.
// Backend address changes still require a restart; only the publish target
// is swapped live.
func (b *Bridge) watchConfig(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		b.logger.Warn("config watch unavailable", "error", err)
		return
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(b.cfgPath); err != nil {
		b.logger.Warn("config watch unavailable", "path", b.cfgPath, "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := config.Load(b.cfgPath)
			if err != nil {
				b.logger.Warn("config reload failed", "error", err)
				continue
			}
			if cfg.Bridge.Channel != "" && cfg.Bridge.Channel != b.pub.Channel() {
				b.logger.Info("bridge channel changed",
					"old", b.pub.Channel(), "new", cfg.Bridge.Channel)
				b.pub.SetChannel(cfg.Bridge.Channel)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("config watch error", "error", err)
		}
	}
}
