package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/logsync/indexer/src/utils/config"
	"github.com/logsync/indexer/src/utils/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// RpcClient talks JSON-RPC to the node that imports blocks
type RpcClient struct {
	log     *logrus.Entry
	http    *resty.Client
	limiter ratelimit.Limiter

	// hash -> number lookups are immutable, cache them for a while
	numbers *cache.Cache

	lastId int64
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcHeader struct {
	Number string `json:"number"`
}

func NewRpcClient(config *config.Config) (self *RpcClient) {
	self = new(RpcClient)
	self.log = logger.NewSublogger("ledger-rpc")

	self.http = resty.New().
		SetBaseURL(config.Ledger.NodeUrl).
		SetTimeout(config.Ledger.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	if config.Ledger.RequestsPerSecond > 0 {
		self.limiter = ratelimit.New(config.Ledger.RequestsPerSecond)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	self.numbers = cache.New(config.Ledger.NumberCacheTTL, config.Ledger.NumberCacheCleanupInterval)

	return
}

func (self *RpcClient) call(ctx context.Context, method string, params []interface{}, out interface{}) (found bool, err error) {
	self.limiter.Take()

	request := rpcRequest{
		Jsonrpc: "2.0",
		Id:      atomic.AddInt64(&self.lastId, 1),
		Method:  method,
		Params:  params,
	}

	resp, err := self.http.R().
		SetContext(ctx).
		SetBody(&request).
		Post("")
	if err != nil {
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("node returned HTTP %d", resp.StatusCode())
		return
	}

	var response rpcResponse
	err = json.Unmarshal(resp.Body(), &response)
	if err != nil {
		return
	}
	if response.Error != nil {
		err = fmt.Errorf("rpc error %d: %s", response.Error.Code, response.Error.Message)
		return
	}

	// Nodes answer null for blocks and keys they don't have
	if len(response.Result) == 0 || string(response.Result) == "null" {
		return false, nil
	}

	err = json.Unmarshal(response.Result, out)
	if err != nil {
		return
	}

	return true, nil
}

func (self *RpcClient) BlockNumber(ctx context.Context, blockHash common.Hash) (number uint64, err error) {
	if cached, ok := self.numbers.Get(blockHash.Hex()); ok {
		return cached.(uint64), nil
	}

	var header rpcHeader
	found, err := self.call(ctx, "chain_getHeader", []interface{}{blockHash.Hex()}, &header)
	if err != nil {
		return
	}
	if !found {
		err = ErrNotFound
		return
	}

	number, err = hexutil.DecodeUint64(header.Number)
	if err != nil {
		return
	}

	self.numbers.SetDefault(blockHash.Hex(), number)
	return
}

func (self *RpcClient) BlockHash(ctx context.Context, number uint64) (hash common.Hash, err error) {
	var out string
	found, err := self.call(ctx, "chain_getBlockHash", []interface{}{hexutil.EncodeUint64(number)}, &out)
	if err != nil {
		return
	}
	if !found {
		err = ErrNotFound
		return
	}

	hash = common.HexToHash(out)
	return
}

func (self *RpcClient) StorageAt(ctx context.Context, blockHash common.Hash, key []byte) (value []byte, err error) {
	var out string
	found, err := self.call(ctx, "state_getStorage", []interface{}{hexutil.Encode(key), blockHash.Hex()}, &out)
	if err != nil {
		return
	}
	if !found {
		// Absent key isn't an error
		return nil, nil
	}

	return hexutil.Decode(out)
}

func (self *RpcClient) FinalizedHead(ctx context.Context) (head Head, err error) {
	var out string
	found, err := self.call(ctx, "chain_getFinalizedHead", []interface{}{}, &out)
	if err != nil {
		return
	}
	if !found {
		err = ErrNotFound
		return
	}

	head.Hash = common.HexToHash(out)
	head.Number, err = self.BlockNumber(ctx, head.Hash)
	return
}
