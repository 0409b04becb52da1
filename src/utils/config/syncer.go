package config

import (
	"time"

	"github.com/spf13/viper"
)

type Syncer struct {
	// Max number of pending blocks claimed in one indexing cycle
	BatchSize int

	// Time between indexing cycles
	Interval time.Duration

	// Upper bound on one cycle, claim included. Exceeding it aborts the
	// cycle's transaction, pending rows stay claimable.
	CycleTimeout time.Duration

	// Workers that extract logs outside the database transaction
	NumWorkers int

	// Rows per INSERT when saving extracted logs
	InsertBatchSize int

	// How often the listener polls the node for the finalized head
	ListenerInterval time.Duration

	// Buffered block hashes between the listener and the status writer
	ListenerQueueSize int

	// Hashes accumulated before sync status rows get inserted
	ListenerBatchSize int

	// Max time a hash waits for its batch to fill up
	ListenerFlushInterval time.Duration

	// Backoff limits for sync status inserts
	ListenerBackoffMaxElapsedTime time.Duration
	ListenerBackoffMaxInterval    time.Duration
}

func setSyncerDefaults() {
	viper.SetDefault("Syncer.BatchSize", "1000")
	viper.SetDefault("Syncer.Interval", "1s")
	viper.SetDefault("Syncer.CycleTimeout", "5m")
	viper.SetDefault("Syncer.NumWorkers", "4")
	viper.SetDefault("Syncer.InsertBatchSize", "500")
	viper.SetDefault("Syncer.ListenerInterval", "1s")
	viper.SetDefault("Syncer.ListenerQueueSize", "100")
	viper.SetDefault("Syncer.ListenerBatchSize", "50")
	viper.SetDefault("Syncer.ListenerFlushInterval", "1s")
	viper.SetDefault("Syncer.ListenerBackoffMaxElapsedTime", "0")
	viper.SetDefault("Syncer.ListenerBackoffMaxInterval", "30s")
}
