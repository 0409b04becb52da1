package sync

import (
	"context"
	"errors"
	"sync"

	"github.com/logsync/indexer/src/utils/config"
	"github.com/logsync/indexer/src/utils/model"
	"github.com/logsync/indexer/src/utils/monitoring"
	"github.com/logsync/indexer/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Syncer periodically runs one indexing cycle:
// claim a batch of pending blocks, extract their logs on the worker pool,
// insert the rows and commit. Everything happens in one database
// transaction, a failed cycle rolls back and the claimed rows stay pending.
// Cycles are allowed to overlap, the transaction is the only coordination.
type Syncer struct {
	*task.Task

	db        *gorm.DB
	store     *Store
	extractor *Extractor
	monitor   monitoring.Monitor
}

func NewSyncer(config *config.Config) (self *Syncer) {
	self = new(Syncer)

	self.Task = task.NewTask(config, "syncer").
		WithPeriodicSubtaskFunc(config.Syncer.Interval, self.runCycle).
		WithWorkerPool(config.Syncer.NumWorkers)

	return
}

func (self *Syncer) WithDB(db *gorm.DB) *Syncer {
	self.db = db
	return self
}

func (self *Syncer) WithStore(store *Store) *Syncer {
	self.store = store
	return self
}

func (self *Syncer) WithExtractor(extractor *Extractor) *Syncer {
	self.extractor = extractor
	return self
}

func (self *Syncer) WithMonitor(monitor monitoring.Monitor) *Syncer {
	self.monitor = monitor
	return self
}

// runCycle never returns an error, a failed cycle is reported and the next
// tick starts fresh. Only the surrounding task's stop ends the loop.
func (self *Syncer) runCycle() error {
	log := self.Log.WithField("cycle", xid.New().String())

	// Bounds the whole cycle, claim included. Exceeding it surfaces as a
	// query failure and aborts the transaction like any other error.
	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Syncer.CycleTimeout)
	defer cancel()

	var numClaimed, numInserted int
	err := self.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) (err error) {
		hashes, err := self.store.ClaimBatch(dbTx, self.Config.Syncer.BatchSize)
		if err != nil {
			self.monitor.GetReport().Indexer.Errors.ClaimFailures.Inc()
			log.WithError(err).Error("Failed to claim a batch of pending blocks")
			return
		}

		numClaimed = len(hashes)
		if numClaimed == 0 {
			// Nothing to do, commit the empty transaction
			return nil
		}

		logs, err := self.extract(ctx, hashes)
		if err != nil {
			return
		}

		err = self.store.InsertLogs(dbTx, logs)
		if err != nil {
			self.monitor.GetReport().Indexer.Errors.InsertFailures.Inc()
			log.WithError(err).Error("Failed to insert extracted logs")
			return
		}

		numInserted = len(logs)
		return
	})
	if err != nil {
		self.monitor.GetReport().Indexer.State.CyclesAborted.Inc()
		log.WithError(err).Error("Indexing cycle aborted, claimed blocks stay pending")
		return nil
	}

	if numClaimed > 0 {
		self.monitor.GetReport().Indexer.State.CyclesCommitted.Inc()
		self.monitor.GetReport().Indexer.State.BlocksClaimed.Add(uint64(numClaimed))
		self.monitor.GetReport().Indexer.State.LogsIndexed.Add(uint64(numInserted))
		self.monitor.GetReport().Indexer.State.LastCycleBatchSize.Store(int64(numClaimed))
		log.WithField("blocks", numClaimed).WithField("logs", numInserted).Info("Indexing cycle committed")
	}

	return nil
}

// extract fans the block hashes out to the worker pool so potentially slow
// ledger reads don't hold the claim transaction's connection.
func (self *Syncer) extract(ctx context.Context, hashes []common.Hash) (logs []*model.Log, err error) {
	if self.IsStopping.Load() {
		// Workers may already be draining, don't hand them new jobs
		return nil, errors.New("syncer is stopping")
	}

	var mtx sync.Mutex
	var wg sync.WaitGroup

	for _, hash := range hashes {
		hash := hash
		wg.Add(1)
		self.Workers.Submit(func() {
			defer wg.Done()
			extracted := self.extractor.ExtractLogs(ctx, hash)
			if len(extracted) == 0 {
				return
			}
			mtx.Lock()
			logs = append(logs, extracted...)
			mtx.Unlock()
		})
	}

	wg.Wait()
	return
}
