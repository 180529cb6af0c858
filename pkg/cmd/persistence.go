// Package cmd provides common initialization functions for the recapd
// binary.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/persistence/file"
	"github.com/recapd/recapd/pkg/persistence/postgresql"
	"github.com/recapd/recapd/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "redis"}

// NewPersistence picks the storage backend from the database URL scheme.
// Anything unrecognized is treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redis.NewPersistence(ctx, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}

// Describe returns a log-friendly name for the backend a URL selects.
func Describe(databaseURL string) string {
	return fmt.Sprintf("%s persistence", parsePersistenceProvider(databaseURL))
}
