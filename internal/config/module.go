package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module exposes configuration loader for fx graphs and logs the effective
// settings once the logger is available.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logSummary),
)

// logSummary never logs the DSN or the JWT secret.
func logSummary(cfg *Config, logger *zap.Logger) {
	logger.Info("configuration loaded",
		zap.String("run_address", cfg.RunAddress),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("notification_topic", cfg.NotificationTopic),
		zap.Int("notify_workers", cfg.NotifyWorkers),
		zap.Int("notify_queue_size", cfg.NotifyQueueSize),
		zap.Int("tx_max_retries", cfg.TxMaxRetries),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.String("log_level", cfg.LogLevel),
	)
}
