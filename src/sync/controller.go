package sync

import (
	"github.com/logsync/indexer/src/ledger"
	"github.com/logsync/indexer/src/schema"
	"github.com/logsync/indexer/src/utils/config"
	"github.com/logsync/indexer/src/utils/model"
	"github.com/logsync/indexer/src/utils/monitoring"
	monitor_indexer "github.com/logsync/indexer/src/utils/monitoring/indexer"
	"github.com/logsync/indexer/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
)

type Controller struct {
	*task.Task
}

// NewController wires the whole indexing feature:
// listener -> status writer -> (pending rows) -> syncer cycles.
// Schema bootstrap runs within NewConnection, its failure is fatal here.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller")

	// SQL database, runs migrations first
	db, err := model.NewConnection(self.Ctx, config, "indexer")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_indexer.NewMonitor().
		WithMaxHistorySize(30)
	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Node's JSON-RPC
	client := ledger.NewRpcClient(config)

	// Receipt decoders for all known schema versions
	registry := schema.NewRegistry()

	store := NewStore(db, config.Syncer.InsertBatchSize)

	extractor := NewExtractor().
		WithClient(client).
		WithRegistry(registry).
		WithMonitor(monitor)

	// Follows the finalized head, resuming from the stored tip
	listener := NewListener(config).
		WithClient(client).
		WithStore(store).
		WithMonitor(monitor)

	// Batches imported block hashes into pending sync status rows
	statusWriter := task.NewProcessor[common.Hash, []byte](config, "status-writer").
		WithInputChannel(listener.Output).
		WithBatchSize(config.Syncer.ListenerBatchSize).
		WithBackoff(config.Syncer.ListenerBackoffMaxElapsedTime, config.Syncer.ListenerBackoffMaxInterval).
		WithOnProcess(func(hash common.Hash) ([][]byte, error) {
			return [][]byte{hash.Bytes()}, nil
		})
	statusWriter = statusWriter.
		WithOnFlush(config.Syncer.ListenerFlushInterval, func(hashes [][]byte) (err error) {
			err = store.InsertSyncStatus(statusWriter.Ctx, hashes)
			if err != nil {
				monitor.GetReport().Indexer.Errors.SyncStatusInsertFailures.Inc()
				return
			}
			monitor.GetReport().Indexer.State.SyncStatusQueued.Add(uint64(len(hashes)))
			return
		})

	// Claims batches and indexes their logs
	syncer := NewSyncer(config).
		WithDB(db).
		WithStore(store).
		WithExtractor(extractor).
		WithMonitor(monitor)

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(listener.Task).
		WithSubtask(statusWriter.Task).
		WithSubtask(syncer.Task).
		WithSubtask(monitor.Task).
		WithSubtask(server.Task)
	return
}
