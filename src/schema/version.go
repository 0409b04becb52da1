package schema

import (
	"context"

	"github.com/logsync/indexer/src/ledger"

	"github.com/ethereum/go-ethereum/common"
)

// Version tags the on-chain encoding of receipts active at a block.
// The set is finite and append only, new protocol upgrades add a tag.
type Version byte

const (
	VersionUndefined Version = 0
	VersionV1        Version = 1
	VersionV2        Version = 2
	VersionV3        Version = 3
)

// Well known state keys, stable across protocol upgrades
var (
	VersionStorageKey  = []byte(":ethereum_schema")
	ReceiptsStorageKey = []byte(":ethereum_receipts")
)

func (self Version) String() string {
	switch self {
	case VersionV1:
		return "v1"
	case VersionV2:
		return "v2"
	case VersionV3:
		return "v3"
	}
	return "undefined"
}

// DecodeVersion parses the raw schema slot value.
// Anything it can't make sense of is Undefined, never an error.
func DecodeVersion(raw []byte) Version {
	if len(raw) == 0 {
		return VersionUndefined
	}
	switch v := Version(raw[0]); v {
	case VersionV1, VersionV2, VersionV3:
		return v
	}
	return VersionUndefined
}

// ResolveVersion reads the schema slot at the given block.
// Absent or unreadable slots degrade to Undefined so extraction keeps
// working across the version boundary without a coordinated migration.
func ResolveVersion(ctx context.Context, client ledger.Client, blockHash common.Hash) Version {
	raw, err := client.StorageAt(ctx, blockHash, VersionStorageKey)
	if err != nil {
		return VersionUndefined
	}
	return DecodeVersion(raw)
}
