package sync

import (
	"context"
	"errors"

	"github.com/logsync/indexer/src/ledger"
	"github.com/logsync/indexer/src/utils/config"
	"github.com/logsync/indexer/src/utils/monitoring"
	"github.com/logsync/indexer/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
)

// indexedTip reports the highest block number with committed logs
type indexedTip interface {
	LastIndexedBlockNumber(ctx context.Context) (uint64, bool, error)
}

// Listener follows the node's finalized head and emits the hash of every
// newly imported block, each of which must end up as a pending sync status
// row. On the first poll it resumes from the stored tip, so blocks imported
// while the process was down get enqueued before new ones. An empty store
// latches onto the current head instead.
type Listener struct {
	*task.Task

	client  ledger.Client
	store   indexedTip
	monitor monitoring.Monitor

	Output chan common.Hash

	lastNumber  uint64
	initialized bool
}

func NewListener(config *config.Config) (self *Listener) {
	self = new(Listener)

	self.Output = make(chan common.Hash, config.Syncer.ListenerQueueSize)

	self.Task = task.NewTask(config, "listener").
		WithPeriodicSubtaskFunc(config.Syncer.ListenerInterval, self.poll).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Listener) WithClient(client ledger.Client) *Listener {
	self.client = client
	return self
}

func (self *Listener) WithStore(store indexedTip) *Listener {
	self.store = store
	return self
}

func (self *Listener) WithMonitor(monitor monitoring.Monitor) *Listener {
	self.monitor = monitor
	return self
}

func (self *Listener) emit(hash common.Hash) (err error) {
	select {
	case <-self.StopChannel:
		return errors.New("listener is stopping")
	case self.Output <- hash:
	}
	return
}

// poll reports failures and returns nil, the task keeps running and the
// next tick picks up where this one left off.
func (self *Listener) poll() error {
	head, err := self.client.FinalizedHead(self.Ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to get finalized head")
		self.monitor.GetReport().Indexer.Errors.ListenerFailures.Inc()
		return nil
	}

	if !self.initialized {
		number, ok, err := self.store.LastIndexedBlockNumber(self.Ctx)
		if err != nil {
			self.Log.WithError(err).Error("Failed to read the indexed tip")
			self.monitor.GetReport().Indexer.Errors.ListenerFailures.Inc()
			return nil
		}

		self.initialized = true
		if ok && number < head.Number {
			// Blocks imported while the indexer was down get enqueued first
			self.lastNumber = number
			self.Log.WithField("from", number+1).WithField("to", head.Number).Info("Backfilling up to the finalized head")
		} else {
			self.lastNumber = head.Number
			self.Log.WithField("number", head.Number).Info("Latched onto finalized head")
			if err = self.emit(head.Hash); err != nil {
				return nil
			}
			self.monitor.GetReport().Indexer.State.ListenerLastNumber.Store(head.Number)
			return nil
		}
	}

	for number := self.lastNumber + 1; number <= head.Number; number++ {
		hash, err := self.client.BlockHash(self.Ctx, number)
		if err != nil {
			// Don't advance, the whole range gets retried next tick
			self.Log.WithError(err).WithField("number", number).Error("Failed to resolve block hash")
			self.monitor.GetReport().Indexer.Errors.ListenerFailures.Inc()
			return nil
		}

		if err = self.emit(hash); err != nil {
			return nil
		}

		self.lastNumber = number
		self.monitor.GetReport().Indexer.State.ListenerLastNumber.Store(number)
	}

	return nil
}
