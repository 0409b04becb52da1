package sync

import (
	"context"
	"testing"

	"github.com/logsync/indexer/src/utils/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

// Exercises the statements the store renders, engine behavior (rollback,
// conflict resolution) is Postgres's job and needs a live database.
type StoreTestSuite struct {
	suite.Suite

	mock  sqlmock.Sqlmock
	db    *gorm.DB
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.Nil(s.T(), err)
	s.mock = mock

	s.db, err = gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{SkipDefaultTransaction: true},
	)
	assert.Nil(s.T(), err)

	s.store = NewStore(s.db, 500)
}

func (s *StoreTestSuite) TearDownTest() {
	assert.Nil(s.T(), s.mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestClaimBatchShape() {
	claimed := common.HexToHash("0x01")
	s.mock.ExpectQuery(`(?s)UPDATE sync_status\s+SET status = \$1\s+WHERE source_block_hash IN\s+\(SELECT source_block_hash\s+FROM sync_status\s+WHERE status = \$2\s+LIMIT \$3\)\s+RETURNING source_block_hash`).
		WillReturnRows(sqlmock.NewRows([]string{"source_block_hash"}).AddRow(claimed.Bytes()))

	hashes, err := s.store.ClaimBatch(s.db, 1000)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), []common.Hash{claimed}, hashes)
}

func (s *StoreTestSuite) TestClaimBatchSkipsBadHashes() {
	claimed := common.HexToHash("0x02")
	s.mock.ExpectQuery(`UPDATE sync_status`).
		WillReturnRows(sqlmock.NewRows([]string{"source_block_hash"}).
			AddRow([]byte{0x01, 0x02}).
			AddRow(claimed.Bytes()))

	hashes, err := s.store.ClaimBatch(s.db, 1000)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), []common.Hash{claimed}, hashes)
}

func (s *StoreTestSuite) TestInsertLogsConflictClause() {
	s.mock.ExpectQuery(`(?s)INSERT INTO "logs" .* ON CONFLICT \("log_index","transaction_index","source_block_hash"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := s.store.InsertLogs(s.db, []*model.Log{
		{
			BlockNumber:     7,
			Address:         common.HexToAddress("0xaa").Bytes(),
			SourceBlockHash: common.HexToHash("0x01").Bytes(),
		},
	})
	assert.Nil(s.T(), err)
}

func (s *StoreTestSuite) TestInsertLogsEmpty() {
	// No statement at all for an empty batch
	err := s.store.InsertLogs(s.db, nil)
	assert.Nil(s.T(), err)
}

func (s *StoreTestSuite) TestInsertSyncStatusDedup() {
	s.mock.ExpectExec(`(?s)INSERT INTO sync_status \(source_block_hash\)\s+SELECT unnest\(\$1::bytea\[\]\)\s+ON CONFLICT \(source_block_hash\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.store.InsertSyncStatus(context.Background(), [][]byte{
		common.HexToHash("0x01").Bytes(),
		common.HexToHash("0x02").Bytes(),
	})
	assert.Nil(s.T(), err)
}

func (s *StoreTestSuite) TestLastIndexedBlockNumber() {
	s.mock.ExpectQuery(`SELECT MAX\(block_number\) FROM logs`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(42))

	number, ok, err := s.store.LastIndexedBlockNumber(context.Background())
	assert.Nil(s.T(), err)
	assert.True(s.T(), ok)
	assert.Equal(s.T(), uint64(42), number)
}

func (s *StoreTestSuite) TestLastIndexedBlockNumberEmpty() {
	s.mock.ExpectQuery(`SELECT MAX\(block_number\) FROM logs`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	_, ok, err := s.store.LastIndexedBlockNumber(context.Background())
	assert.Nil(s.T(), err)
	assert.False(s.T(), ok)
}
