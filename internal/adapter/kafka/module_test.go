package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	client := newClient(clientParams{Config: &config.Config{}, Logger: zap.NewNop()})
	require.IsType(t, &LogPublisher{}, client)

	client = newClient(clientParams{
		Config: &config.Config{KafkaBrokers: []string{"localhost:9092"}, NotificationTopic: "n"},
		Logger: zap.NewNop(),
	})
	publisher, ok := client.(*Publisher)
	require.True(t, ok)
	require.Equal(t, "n", publisher.topic)
}

func TestRegisterLifecycleClosesClient(t *testing.T) {
	writer := &writerStub{}
	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, &Publisher{writer: writer, logger: zap.NewNop()})

	require.NoError(t, lc.Start(context.Background()))
	require.NoError(t, lc.Stop(context.Background()))
	require.True(t, writer.closed)
}
