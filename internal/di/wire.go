//go:build wireinject
// +build wireinject

package di

import (
	"SigTrail/pkg/config"
	"SigTrail/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
    wire.Build(
        // Metrics and logging
        ProvideMetrics,
        ProvideLogger,

        // Infrastructure clients
        ProvideClickHouseClient,
        ProvideKafkaProducer,
        ProvideKafkaConsumer,

        // Repositories (with business logic)
        ProvideSignalStorage,
        ProvideAlertPublisher,
        ProvideAlertFeed,
        ProvideAccountDirectory,

        // Use cases
        ProvideAlertProcessor,
        ProvideAlertCollector,
        ProvideKafkaAlertsHandler,
        ProvideSessionManager,

        // Application server
        ProvideApp,
    )
    return &server.App{}, nil
}
