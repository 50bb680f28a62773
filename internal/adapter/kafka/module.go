package kafka

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the notification publisher to fx graph.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Invoke(registerLifecycle),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func newClient(p clientParams) Client {
	logger := p.Logger.Named("kafka")
	if len(p.Config.KafkaBrokers) == 0 {
		logger.Warn("no kafka brokers configured, notifications are only logged")
		return NewLogPublisher(logger)
	}
	return NewPublisher(p.Config.KafkaBrokers, p.Config.NotificationTopic, logger)
}

func registerLifecycle(lc fx.Lifecycle, client Client) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
