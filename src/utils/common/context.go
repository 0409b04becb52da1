package common

import (
	"context"

	"github.com/logsync/indexer/src/utils/config"
)

type contextKey int

const configKey contextKey = iota

// SetConfig stores the configuration in the context
func SetConfig(ctx context.Context, config *config.Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

// GetConfig retrieves the configuration from the context.
// Panics if the config isn't there, this is a programming error.
func GetConfig(ctx context.Context) *config.Config {
	return ctx.Value(configKey).(*config.Config)
}
