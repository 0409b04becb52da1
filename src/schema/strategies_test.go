package schema

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestStrategiesTestSuite(t *testing.T) {
	suite.Run(t, new(StrategiesTestSuite))
}

type StrategiesTestSuite struct {
	suite.Suite
	registry *Registry
}

func (s *StrategiesTestSuite) SetupSuite() {
	s.registry = NewRegistry()
}

func (s *StrategiesTestSuite) TestRegistryExactLookup() {
	for _, version := range []Version{VersionV1, VersionV2, VersionV3} {
		strategy, exact := s.registry.Decoder(version)
		assert.True(s.T(), exact)
		assert.Equal(s.T(), version, strategy.Version())
	}
}

func (s *StrategiesTestSuite) TestRegistryFallback() {
	strategy, exact := s.registry.Decoder(VersionUndefined)
	assert.False(s.T(), exact)
	assert.Equal(s.T(), VersionV3, strategy.Version())

	// A version newer than this build knows
	strategy, exact = s.registry.Decoder(Version(77))
	assert.False(s.T(), exact)
	assert.Equal(s.T(), VersionV3, strategy.Version())
}

func (s *StrategiesTestSuite) clientWithReceipts(blockHash common.Hash, raw []byte) *mockClient {
	return &mockClient{
		storage: map[common.Hash]map[string][]byte{
			blockHash: {string(ReceiptsStorageKey): raw},
		},
	}
}

func (s *StrategiesTestSuite) TestV1Decode() {
	blockHash := common.HexToHash("0x0a")
	stored := []storedReceiptV1{
		{
			PostStateOrStatus: []byte{1},
			CumulativeGasUsed: 21000,
			Logs: []storedLog{
				{
					Address: common.HexToAddress("0xaa00000000000000000000000000000000000000"),
					Topics:  []common.Hash{common.HexToHash("0x11")},
				},
			},
		},
	}
	raw, err := rlp.EncodeToBytes(stored)
	assert.Nil(s.T(), err)

	strategy, _ := s.registry.Decoder(VersionV1)
	receipts, err := strategy.Receipts(context.Background(), s.clientWithReceipts(blockHash, raw), blockHash)
	assert.Nil(s.T(), err)
	assert.Len(s.T(), receipts, 1)
	assert.Len(s.T(), receipts[0].Logs, 1)
	assert.Equal(s.T(), stored[0].Logs[0].Address, receipts[0].Logs[0].Address)
	assert.Equal(s.T(), stored[0].Logs[0].Topics, receipts[0].Logs[0].Topics)
}

func (s *StrategiesTestSuite) TestV2Decode() {
	blockHash := common.HexToHash("0x0b")
	stored := []storedReceiptV2{
		{
			Status:            1,
			CumulativeGasUsed: 21000,
			Bloom:             types.Bloom{},
			Logs: []storedLog{
				{
					Address: common.HexToAddress("0xbb00000000000000000000000000000000000000"),
					Topics:  []common.Hash{common.HexToHash("0x22"), common.HexToHash("0x33")},
				},
			},
		},
	}
	raw, err := rlp.EncodeToBytes(stored)
	assert.Nil(s.T(), err)

	strategy, _ := s.registry.Decoder(VersionV2)
	receipts, err := strategy.Receipts(context.Background(), s.clientWithReceipts(blockHash, raw), blockHash)
	assert.Nil(s.T(), err)
	assert.Len(s.T(), receipts, 1)
	assert.Equal(s.T(), stored[0].Logs[0].Topics, receipts[0].Logs[0].Topics)
}

func (s *StrategiesTestSuite) TestV3Decode() {
	blockHash := common.HexToHash("0x0c")
	payload, err := rlp.EncodeToBytes(storedReceiptV2{
		Status: 1,
		Logs: []storedLog{
			{
				Address: common.HexToAddress("0xcc00000000000000000000000000000000000000"),
			},
		},
	})
	assert.Nil(s.T(), err)

	raw, err := rlp.EncodeToBytes([]storedEnvelopeV3{
		{Type: 2, Payload: payload},
	})
	assert.Nil(s.T(), err)

	strategy, _ := s.registry.Decoder(VersionV3)
	receipts, err := strategy.Receipts(context.Background(), s.clientWithReceipts(blockHash, raw), blockHash)
	assert.Nil(s.T(), err)
	assert.Len(s.T(), receipts, 1)
	assert.Len(s.T(), receipts[0].Logs, 1)
}

func (s *StrategiesTestSuite) TestDecodeMalformed() {
	blockHash := common.HexToHash("0x0d")
	client := s.clientWithReceipts(blockHash, []byte{0xde, 0xad, 0xbe, 0xef})

	for _, version := range []Version{VersionV1, VersionV2, VersionV3} {
		strategy, _ := s.registry.Decoder(version)
		receipts, err := strategy.Receipts(context.Background(), client, blockHash)
		assert.NotNil(s.T(), err)
		assert.Nil(s.T(), receipts)
	}
}

func (s *StrategiesTestSuite) TestNoReceiptsSlot() {
	blockHash := common.HexToHash("0x0e")
	client := &mockClient{storage: map[common.Hash]map[string][]byte{}}

	for _, version := range []Version{VersionV1, VersionV2, VersionV3} {
		strategy, _ := s.registry.Decoder(version)
		receipts, err := strategy.Receipts(context.Background(), client, blockHash)
		assert.Nil(s.T(), err)
		assert.Empty(s.T(), receipts)
	}
}
