//go:build wireinject
// +build wireinject

package di

import (
	"TickPulse/pkg/config"
	"TickPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideRegistry,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideVerdictCache,

		// Repositories and external services
		ProvideSignalStore,
		ProvideSignalSink,
		ProvideMarketStream,
		ProvideOrderPlacer,
		ProvideRiskOracle,

		// Use cases
		ProvideTickCollector,
		ProvideSignalPoller,
		ProvideTickReplayHandler,

		// HTTP + application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
