package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Returned when the node doesn't know the requested block
var ErrNotFound = errors.New("block not found")

type Head struct {
	Hash   common.Hash
	Number uint64
}

// Client is the boundary to the node that imports ledger blocks.
// Implementations must be safe for concurrent use, extraction runs
// on multiple workers.
type Client interface {
	// BlockNumber resolves the height of the block with the given hash.
	// Returns ErrNotFound when the node doesn't have the block.
	BlockNumber(ctx context.Context, blockHash common.Hash) (uint64, error)

	// BlockHash resolves the canonical hash at the given height
	BlockHash(ctx context.Context, number uint64) (common.Hash, error)

	// StorageAt reads a ledger state value at the given block.
	// Returns (nil, nil) when the key is absent.
	StorageAt(ctx context.Context, blockHash common.Hash, key []byte) ([]byte, error)

	// FinalizedHead returns the newest finalized block
	FinalizedHead(ctx context.Context) (Head, error)
}
