package schema

import (
	"context"

	"github.com/logsync/indexer/src/ledger"

	"github.com/ethereum/go-ethereum/common"
)

// Log is one decoded event log, indices are assigned by the extractor
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the execution record of one transaction
type Receipt struct {
	Logs []Log
}

// DecoderStrategy decodes the receipts of one block from ledger state.
// Strategies only read through the client, they have no other side effects.
type DecoderStrategy interface {
	Version() Version
	Receipts(ctx context.Context, client ledger.Client, blockHash common.Hash) ([]Receipt, error)
}

// Registry maps schema versions to decoder strategies.
// Read-only after construction, safe to share without synchronization.
type Registry struct {
	strategies map[Version]DecoderStrategy
	fallback   DecoderStrategy
}

func NewRegistry() (self *Registry) {
	self = new(Registry)

	v3 := &strategyV3{}
	self.strategies = map[Version]DecoderStrategy{
		VersionV1: &strategyV1{},
		VersionV2: &strategyV2{},
		VersionV3: v3,
	}

	// Latest encoding doubles as the fallback for Undefined and
	// versions this build doesn't know yet
	self.fallback = v3

	return
}

// Decoder returns the strategy registered for the exact version, or the
// fallback. Never nil, never errors.
func (self *Registry) Decoder(version Version) (strategy DecoderStrategy, exact bool) {
	strategy, exact = self.strategies[version]
	if !exact {
		strategy = self.fallback
	}
	return
}
