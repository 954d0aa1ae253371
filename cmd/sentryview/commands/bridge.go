package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/netsentinel/sentryview/internal/bridge"
)

func newBridgeCmd() *cobra.Command {
	var redisAddr, channel, metricsBind string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Re-publish live alerts to a Redis channel",
		Long: `Runs headless: subscribes to the backend live feed and publishes every
valid alert to a Redis pub/sub channel, so other tooling can consume the
stream without holding its own WebSocket. Optionally serves Prometheus
metrics. The channel can be changed at runtime by editing the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if redisAddr != "" {
				cfg.Bridge.RedisAddr = redisAddr
			}
			if channel != "" {
				cfg.Bridge.Channel = channel
			}
			if metricsBind != "" {
				cfg.Bridge.MetricsBind = metricsBind
			}

			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := bridge.New(ctx, cfg, cfgFile, logger)
			if err != nil {
				return err
			}
			return b.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address (host:port)")
	cmd.Flags().StringVar(&channel, "channel", "", "pub/sub channel to publish alerts on")
	cmd.Flags().StringVar(&metricsBind, "metrics", "", "bind address for /metrics (empty disables)")
	return cmd
}
