package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides a dedicated registry and the service collectors.
var Module = fx.Provide(
	prometheus.NewRegistry,
	New,
)
