package model

const TableSyncStatus = "sync_status"

type SyncStatusValue int16

const (
	// Block imported by the node, logs not extracted yet
	SyncStatusPending SyncStatusValue = 0

	// Logs extracted and committed, status never goes back
	SyncStatusIndexed SyncStatusValue = 1
)

// SyncStatus is one row per ledger block hash known to the indexer
type SyncStatus struct {
	ID              int64           `gorm:"primaryKey" json:"-"`
	SourceBlockHash []byte          `gorm:"column:source_block_hash" json:"source_block_hash"`
	Status          SyncStatusValue `gorm:"column:status" json:"status"`
}

func (SyncStatus) TableName() string {
	return TableSyncStatus
}
