package sync

import (
	"context"
	"database/sql"

	"github.com/logsync/indexer/src/utils/logger"
	"github.com/logsync/indexer/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns all writes to the sync_status and logs tables
type Store struct {
	log *logrus.Entry
	db  *gorm.DB

	insertBatchSize int
}

func NewStore(db *gorm.DB, insertBatchSize int) (self *Store) {
	self = new(Store)
	self.log = logger.NewSublogger("store")
	self.db = db
	self.insertBatchSize = insertBatchSize
	return
}

// ClaimBatch atomically marks at most limit pending blocks as indexed and
// returns their hashes. Runs inside the caller's transaction, rolling it
// back reverts the claim. Overlapping invocations from concurrent cycles
// may claim the same rows before either commits. Log inserts are idempotent
// and re-setting status to indexed is a no-op, so no unique violation can
// happen, the overlap only costs duplicate extraction work.
func (self *Store) ClaimBatch(dbTx *gorm.DB, limit int) (hashes []common.Hash, err error) {
	var claimed []model.SyncStatus
	err = dbTx.
		Raw(`UPDATE sync_status
			SET status = ?
			WHERE source_block_hash IN
				(SELECT source_block_hash
				 FROM sync_status
				 WHERE status = ?
				 LIMIT ?)
			RETURNING source_block_hash`,
			model.SyncStatusIndexed, model.SyncStatusPending, limit).
		Scan(&claimed).
		Error
	if err != nil {
		return
	}

	hashes = make([]common.Hash, 0, len(claimed))
	for _, row := range claimed {
		if len(row.SourceBlockHash) != common.HashLength {
			self.log.WithField("len", len(row.SourceBlockHash)).Error("Unable to decode claimed block hash")
			continue
		}
		hashes = append(hashes, common.BytesToHash(row.SourceBlockHash))
	}
	return
}

// InsertLogs saves extracted logs inside the claim's transaction.
// Duplicates on the natural key are silently discarded, a concurrent cycle
// may have extracted the same block already.
func (self *Store) InsertLogs(dbTx *gorm.DB, logs []*model.Log) (err error) {
	if len(logs) == 0 {
		return
	}

	return dbTx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "log_index"},
				{Name: "transaction_index"},
				{Name: "source_block_hash"},
			},
			DoNothing: true,
		}).
		CreateInBatches(logs, self.insertBatchSize).
		Error
}

// LastIndexedBlockNumber returns the highest block number that has logs
// committed. ok is false when nothing has been indexed yet.
func (self *Store) LastIndexedBlockNumber(ctx context.Context) (number uint64, ok bool, err error) {
	var max sql.NullInt64
	err = self.db.WithContext(ctx).
		Raw(`SELECT MAX(block_number) FROM logs`).
		Scan(&max).
		Error
	if err != nil || !max.Valid {
		return
	}
	return uint64(max.Int64), true, nil
}

// InsertSyncStatus creates pending rows for newly imported blocks.
// Hashes the indexer already knows are skipped, calling this twice with
// overlapping sets is a no-op for the overlap.
func (self *Store) InsertSyncStatus(ctx context.Context, hashes [][]byte) (err error) {
	if len(hashes) == 0 {
		return
	}

	return self.db.WithContext(ctx).
		Exec(`INSERT INTO sync_status (source_block_hash)
			SELECT unnest(?::bytea[])
			ON CONFLICT (source_block_hash) DO NOTHING`,
			pq.ByteaArray(hashes)).
		Error
}
