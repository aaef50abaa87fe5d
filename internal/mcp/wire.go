//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/job-hunter/internal/config"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

// InitializeResources builds the job service and its stores from config.
// The returned cleanup closes everything in reverse order.
func InitializeResources(ctx context.Context, cfg config.Config, catalog config.Catalog, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Execution
		providePool,
		providePerformance,
		provideSessions,
		provideSelector,
		provideSourceRegistry,
		provideSettings,

		// Storage and sinks
		provideNeo4jClient,
		provideRepository,
		provideArchive,
		providePublisher,
		provideSinks,

		// Services
		provideJobService,
		provideSheets,
		newResources,
	)

	return nil, nil, nil
}
