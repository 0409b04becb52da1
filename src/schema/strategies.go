package schema

import (
	"context"
	"fmt"

	"github.com/logsync/indexer/src/ledger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

type storedLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// First encoding: post-state bytes instead of a status code, no bloom
type storedReceiptV1 struct {
	PostStateOrStatus []byte
	CumulativeGasUsed uint64
	Logs              []storedLog
}

// Second encoding: status code plus the log bloom
type storedReceiptV2 struct {
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             types.Bloom
	Logs              []storedLog
}

// Third encoding wraps the V2 payload in a typed envelope,
// the type byte distinguishes legacy, access-list and dynamic-fee
// transactions
type storedEnvelopeV3 struct {
	Type    uint8
	Payload []byte
}

func convertLogs(stored []storedLog) []Log {
	logs := make([]Log, len(stored))
	for i, log := range stored {
		logs[i] = Log{
			Address: log.Address,
			Topics:  log.Topics,
			Data:    log.Data,
		}
	}
	return logs
}

func readReceiptsSlot(ctx context.Context, client ledger.Client, blockHash common.Hash) ([]byte, error) {
	return client.StorageAt(ctx, blockHash, ReceiptsStorageKey)
}

type strategyV1 struct{}

func (self *strategyV1) Version() Version {
	return VersionV1
}

func (self *strategyV1) Receipts(ctx context.Context, client ledger.Client, blockHash common.Hash) (receipts []Receipt, err error) {
	raw, err := readReceiptsSlot(ctx, client, blockHash)
	if err != nil || raw == nil {
		return nil, err
	}

	var stored []storedReceiptV1
	err = rlp.DecodeBytes(raw, &stored)
	if err != nil {
		return nil, fmt.Errorf("malformed v1 receipts: %w", err)
	}

	receipts = make([]Receipt, len(stored))
	for i, receipt := range stored {
		receipts[i] = Receipt{Logs: convertLogs(receipt.Logs)}
	}
	return
}

type strategyV2 struct{}

func (self *strategyV2) Version() Version {
	return VersionV2
}

func (self *strategyV2) Receipts(ctx context.Context, client ledger.Client, blockHash common.Hash) (receipts []Receipt, err error) {
	raw, err := readReceiptsSlot(ctx, client, blockHash)
	if err != nil || raw == nil {
		return nil, err
	}

	var stored []storedReceiptV2
	err = rlp.DecodeBytes(raw, &stored)
	if err != nil {
		return nil, fmt.Errorf("malformed v2 receipts: %w", err)
	}

	receipts = make([]Receipt, len(stored))
	for i, receipt := range stored {
		receipts[i] = Receipt{Logs: convertLogs(receipt.Logs)}
	}
	return
}

type strategyV3 struct{}

func (self *strategyV3) Version() Version {
	return VersionV3
}

func (self *strategyV3) Receipts(ctx context.Context, client ledger.Client, blockHash common.Hash) (receipts []Receipt, err error) {
	raw, err := readReceiptsSlot(ctx, client, blockHash)
	if err != nil || raw == nil {
		return nil, err
	}

	var envelopes []storedEnvelopeV3
	err = rlp.DecodeBytes(raw, &envelopes)
	if err != nil {
		return nil, fmt.Errorf("malformed v3 receipts: %w", err)
	}

	receipts = make([]Receipt, len(envelopes))
	for i, envelope := range envelopes {
		// All transaction types share the payload shape
		var payload storedReceiptV2
		err = rlp.DecodeBytes(envelope.Payload, &payload)
		if err != nil {
			return nil, fmt.Errorf("malformed v3 receipt payload (type %d): %w", envelope.Type, err)
		}
		receipts[i] = Receipt{Logs: convertLogs(payload.Logs)}
	}
	return
}
