package report

import (
	"go.uber.org/atomic"
)

type IndexerErrors struct {
	ClaimFailures            atomic.Int64 `json:"claim_failures"`
	InsertFailures           atomic.Int64 `json:"insert_failures"`
	SyncStatusInsertFailures atomic.Int64 `json:"sync_status_insert_failures"`
	ListenerFailures         atomic.Int64 `json:"listener_failures"`
	BlockNumberMissing       atomic.Int64 `json:"block_number_missing"`
	ReceiptDecodeFailures    atomic.Int64 `json:"receipt_decode_failures"`
}

type IndexerState struct {
	BlocksClaimed        atomic.Uint64  `json:"blocks_claimed"`
	LogsIndexed          atomic.Uint64  `json:"logs_indexed"`
	CyclesCommitted      atomic.Uint64  `json:"cycles_committed"`
	CyclesAborted        atomic.Uint64  `json:"cycles_aborted"`
	SchemaFallbacks      atomic.Uint64  `json:"schema_fallbacks"`
	SyncStatusQueued     atomic.Uint64  `json:"sync_status_queued"`
	ListenerLastNumber   atomic.Uint64  `json:"listener_last_number"`
	LastCycleBatchSize   atomic.Int64   `json:"last_cycle_batch_size"`
	AverageLogsPerMinute atomic.Float64 `json:"average_logs_per_minute"`
}

type IndexerReport struct {
	State  IndexerState  `json:"state"`
	Errors IndexerErrors `json:"errors"`
}
