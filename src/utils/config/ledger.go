package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ledger struct {
	// JSON-RPC endpoint of the node that imports blocks
	NodeUrl string

	// Timeout for a single RPC call
	RequestTimeout time.Duration

	// Max requests per second sent to the node, 0 disables limiting
	RequestsPerSecond int

	// How long hash -> block number lookups are cached
	NumberCacheTTL time.Duration

	// How often expired entries get evicted from the number cache
	NumberCacheCleanupInterval time.Duration
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.NodeUrl", "http://127.0.0.1:9944")
	viper.SetDefault("Ledger.RequestTimeout", "30s")
	viper.SetDefault("Ledger.RequestsPerSecond", "100")
	viper.SetDefault("Ledger.NumberCacheTTL", "10m")
	viper.SetDefault("Ledger.NumberCacheCleanupInterval", "15m")
}
