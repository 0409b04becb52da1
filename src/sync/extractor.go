package sync

import (
	"context"
	"math"

	"github.com/logsync/indexer/src/ledger"
	"github.com/logsync/indexer/src/schema"
	"github.com/logsync/indexer/src/utils/logger"
	"github.com/logsync/indexer/src/utils/model"
	"github.com/logsync/indexer/src/utils/monitoring"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Extractor turns one block's receipts into log rows.
// It only reads from the ledger client, never touches the database, so it's
// safe to run on worker goroutines while the claim transaction stays open.
type Extractor struct {
	log      *logrus.Entry
	client   ledger.Client
	registry *schema.Registry
	monitor  monitoring.Monitor
}

func NewExtractor() (self *Extractor) {
	self = new(Extractor)
	self.log = logger.NewSublogger("extractor")
	return
}

func (self *Extractor) WithClient(client ledger.Client) *Extractor {
	self.client = client
	return self
}

func (self *Extractor) WithRegistry(registry *schema.Registry) *Extractor {
	self.registry = registry
	return self
}

func (self *Extractor) WithMonitor(monitor monitoring.Monitor) *Extractor {
	self.monitor = monitor
	return self
}

// saturating, non-negative cast from the chain's height type
func blockNumber(number uint64) int64 {
	if number > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(number)
}

// topic returns the i-th topic, missing topics are the zero hash
func topic(topics []common.Hash, i int) []byte {
	if i >= len(topics) {
		return common.Hash{}.Bytes()
	}
	return topics[i].Bytes()
}

// ExtractLogs decodes all logs emitted by the block's transactions.
// One block's trouble never fails the batch: an unresolvable height is
// recorded as 0, an unknown schema version uses the fallback decoder and
// undecodable receipts yield zero rows. All of that is reported, not raised.
func (self *Extractor) ExtractLogs(ctx context.Context, blockHash common.Hash) (logs []*model.Log) {
	var number int64
	resolved, err := self.client.BlockNumber(ctx, blockHash)
	if err != nil {
		self.log.WithError(err).
			WithField("block_hash", blockHash.Hex()).
			Error("Cannot find number for block hash")
		self.monitor.GetReport().Indexer.Errors.BlockNumberMissing.Inc()
	} else {
		number = blockNumber(resolved)
	}

	version := schema.ResolveVersion(ctx, self.client, blockHash)
	strategy, exact := self.registry.Decoder(version)
	if !exact {
		self.monitor.GetReport().Indexer.State.SchemaFallbacks.Inc()
	}

	receipts, err := strategy.Receipts(ctx, self.client, blockHash)
	if err != nil {
		self.log.WithError(err).
			WithField("block_hash", blockHash.Hex()).
			WithField("version", version.String()).
			Error("Failed to decode receipts, skipping block")
		self.monitor.GetReport().Indexer.Errors.ReceiptDecodeFailures.Inc()
		return nil
	}

	for transactionIndex, receipt := range receipts {
		for logIndex, log := range receipt.Logs {
			row := &model.Log{
				BlockNumber:      number,
				Address:          log.Address.Bytes(),
				LogIndex:         int32(logIndex),
				TransactionIndex: int32(transactionIndex),
				SourceBlockHash:  blockHash.Bytes(),
			}
			row.Topic1 = topic(log.Topics, 0)
			row.Topic2 = topic(log.Topics, 1)
			row.Topic3 = topic(log.Topics, 2)
			row.Topic4 = topic(log.Topics, 3)
			logs = append(logs, row)
		}
	}
	return
}
