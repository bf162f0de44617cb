// Package chaintest 提供内存版的链后端，用于在不连接节点的情况下测试。
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// ErrExecutionReverted 未配置返回值的方法调用
var ErrExecutionReverted = errors.New("execution reverted")

// Backend 记录所有RPC调用的假后端，满足 chain.Backend
type Backend struct {
	mu sync.Mutex

	abi      abi.ABI
	chainID  *big.Int
	nonce    uint64
	results  map[string][]byte
	calls    map[string]int
	sent     []*ethtypes.Transaction
	receipts map[common.Hash]*ethtypes.Receipt

	callErr error
	sendErr error
	revert  bool
}

// NewBackend 创建假后端
func NewBackend(parsed abi.ABI, chainID int64) *Backend {
	return &Backend{
		abi:      parsed,
		chainID:  big.NewInt(chainID),
		results:  make(map[string][]byte),
		calls:    make(map[string]int),
		receipts: make(map[common.Hash]*ethtypes.Receipt),
	}
}

// SetResult 设置某个方法的返回值（按ABI输出编码）
func (b *Backend) SetResult(method string, values ...interface{}) {
	m, ok := b.abi.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: unknown method %q", method))
	}
	packed, err := m.Outputs.Pack(values...)
	if err != nil {
		panic(fmt.Sprintf("chaintest: pack %s outputs: %v", method, err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[method] = packed
}

// FailCalls 让之后所有eth_call返回err
func (b *Backend) FailCalls(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callErr = err
}

// FailSends 让之后所有广播返回err
func (b *Backend) FailSends(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sendErr = err
}

// RevertAll 之后上链的交易receipt状态均为失败
func (b *Backend) RevertAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revert = true
}

// Calls 返回RPC调用总次数
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// CallCount 返回某个RPC方法的调用次数
func (b *Backend) CallCount(rpcMethod string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[rpcMethod]
}

// Sent 返回所有已广播的交易
func (b *Backend) Sent() []*ethtypes.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*ethtypes.Transaction, len(b.sent))
	copy(out, b.sent)
	return out
}

func (b *Backend) record(rpcMethod string) {
	b.calls[rpcMethod]++
}

func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_getCode")
	return []byte{0x60, 0x80}, nil
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_call")

	if b.callErr != nil {
		return nil, b.callErr
	}
	if len(call.Data) < 4 {
		return nil, ErrExecutionReverted
	}
	m, err := b.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, ErrExecutionReverted
	}
	out, ok := b.results[m.Name]
	if !ok {
		return nil, ErrExecutionReverted
	}
	return out, nil
}

func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_chainId")
	return new(big.Int).Set(b.chainID), nil
}

// PendingNonceAt 每次调用返回递增的nonce
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_getTransactionCount")
	n := b.nonce
	b.nonce++
	return n, nil
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_gasPrice")
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_sendRawTransaction")

	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)

	status := ethtypes.ReceiptStatusSuccessful
	if b.revert {
		status = ethtypes.ReceiptStatusFailed
	}
	b.receipts[tx.Hash()] = &ethtypes.Receipt{
		Type:              tx.Type(),
		Status:            status,
		CumulativeGasUsed: 51_000,
		GasUsed:           51_000,
		TxHash:            tx.Hash(),
		BlockNumber:       big.NewInt(int64(len(b.sent))),
		Logs:              []*ethtypes.Log{},
	}
	return nil
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("eth_getTransactionReceipt")

	r, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}
