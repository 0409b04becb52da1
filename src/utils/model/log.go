package model

const TableLogs = "logs"

// Log is one indexed event log. Append only, rows are never updated.
// (log_index, transaction_index, source_block_hash) is the natural key,
// re-extracting a block must not create duplicates.
type Log struct {
	ID               int64  `gorm:"primaryKey" json:"-"`
	BlockNumber      int64  `gorm:"column:block_number" json:"block_number"`
	Address          []byte `gorm:"column:address" json:"address"`
	Topic1           []byte `gorm:"column:topic_1" json:"topic_1"`
	Topic2           []byte `gorm:"column:topic_2" json:"topic_2"`
	Topic3           []byte `gorm:"column:topic_3" json:"topic_3"`
	Topic4           []byte `gorm:"column:topic_4" json:"topic_4"`
	LogIndex         int32  `gorm:"column:log_index" json:"log_index"`
	TransactionIndex int32  `gorm:"column:transaction_index" json:"transaction_index"`
	SourceBlockHash  []byte `gorm:"column:source_block_hash" json:"source_block_hash"`
}

func (Log) TableName() string {
	return TableLogs
}
