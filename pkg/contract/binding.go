package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"tokengate/pkg/chain"
	"tokengate/pkg/types"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrUnknownMethod 方法不在ABI中，或者不是只读方法
	ErrUnknownMethod = errors.New("method does not exist in ABI")
	// ErrInvalidRecipient 接收方地址格式错误
	ErrInvalidRecipient = errors.New("invalid recipient address")
)

// Chain 合约绑定依赖的链客户端能力（*chain.Client 满足该接口）
type Chain interface {
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Pack(method string, args ...interface{}) ([]byte, error)
	Intent(ctx context.Context, recipient common.Address, data []byte) (*types.TransactionIntent, error)
	Submit(ctx context.Context, intent *types.TransactionIntent) (*ethtypes.Receipt, error)
}

// Binding 代币合约的类型化绑定，按方法名分发只读调用
type Binding struct {
	desc     *Descriptor
	chain    Chain
	readable map[string]Operation
}

// NewBinding 创建绑定，并校验操作表与ABI描述一致
func NewBinding(desc *Descriptor, c Chain) (*Binding, error) {
	b := &Binding{
		desc:     desc,
		chain:    c,
		readable: make(map[string]Operation),
	}

	for op, sig := range operationSigs {
		m, ok := desc.Lookup(sig.method)
		if !ok {
			return nil, fmt.Errorf("abi has no method %q", sig.method)
		}
		if m.Mutability != sig.mutability {
			return nil, fmt.Errorf("abi method %q is %s, expected %s", sig.method, m.Mutability, sig.mutability)
		}
		if !sameTypes(m.Inputs, sig.inputs) || !sameTypes(m.Outputs, sig.outputs) {
			return nil, fmt.Errorf("abi method %q has unexpected signature", sig.method)
		}
		if sig.mutability == MutabilityRead {
			b.readable[sig.method] = op
		}
	}
	return b, nil
}

func sameTypes(params []Param, want []string) bool {
	if len(params) != len(want) {
		return false
	}
	for i, p := range params {
		if p.Type != want[i] {
			return false
		}
	}
	return true
}

// Descriptor 返回绑定使用的ABI描述
func (b *Binding) Descriptor() *Descriptor {
	return b.desc
}

// Resolve 查找可通过只读接口调用的操作
func (b *Binding) Resolve(method string) (Operation, bool) {
	op, ok := b.readable[method]
	return op, ok
}

// Read 按方法名执行只读调用
//
// 方法名不存在或不是只读方法时返回 ErrUnknownMethod，此时不会发起任何RPC。
// 参数个数或格式错误返回普通错误。整数结果以十进制字符串返回。
func (b *Binding) Read(ctx context.Context, method string, args ...string) (interface{}, error) {
	op, ok := b.Resolve(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if len(args) != op.Arity() {
		return nil, fmt.Errorf("invalid number of parameters for %q: got %d, expected %d", method, len(args), op.Arity())
	}

	switch op {
	case OpBalanceOf:
		account, err := parseAddress(args[0])
		if err != nil {
			return nil, err
		}
		v, err := b.BalanceOf(ctx, account)
		if err != nil {
			return nil, err
		}
		return v.String(), nil
	case OpDecimals:
		v, err := b.Decimals(ctx)
		if err != nil {
			return nil, err
		}
		return strconv.FormatUint(uint64(v), 10), nil
	case OpIsTokenHolder:
		account, err := parseAddress(args[0])
		if err != nil {
			return nil, err
		}
		return b.IsTokenHolder(ctx, account)
	case OpName:
		return b.Name(ctx)
	case OpSymbol:
		return b.Symbol(ctx)
	case OpTotalSupply:
		v, err := b.TotalSupply(ctx)
		if err != nil {
			return nil, err
		}
		return v.String(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

func parseAddress(s string) (common.Address, error) {
	if !chain.IsAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// unpackOne 取出单返回值并断言类型
func unpackOne[T any](out []interface{}, method string) (T, error) {
	var zero T
	if len(out) != 1 {
		return zero, fmt.Errorf("%s: expected 1 return value, got %d", method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected return type %T", method, out[0])
	}
	return v, nil
}

func call[T any](ctx context.Context, b *Binding, op Operation, args ...interface{}) (T, error) {
	out, err := b.chain.Call(ctx, op.Method(), args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return unpackOne[T](out, op.Method())
}

// BalanceOf 查询账户余额（最小单位）
func (b *Binding) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return call[*big.Int](ctx, b, OpBalanceOf, account)
}

// Decimals 查询代币精度
func (b *Binding) Decimals(ctx context.Context) (uint8, error) {
	return call[uint8](ctx, b, OpDecimals)
}

// IsTokenHolder 查询账户是否持有代币
func (b *Binding) IsTokenHolder(ctx context.Context, account common.Address) (bool, error) {
	return call[bool](ctx, b, OpIsTokenHolder, account)
}

// Name 查询代币名称
func (b *Binding) Name(ctx context.Context) (string, error) {
	return call[string](ctx, b, OpName)
}

// Symbol 查询代币符号
func (b *Binding) Symbol(ctx context.Context) (string, error) {
	return call[string](ctx, b, OpSymbol)
}

// TotalSupply 查询总发行量
func (b *Binding) TotalSupply(ctx context.Context) (*big.Int, error) {
	return call[*big.Int](ctx, b, OpTotalSupply)
}

// Transfer 转账：编码、签名、广播并等待receipt
func (b *Binding) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*ethtypes.Receipt, error) {
	data, err := b.chain.Pack(OpTransfer.Method(), to, amount)
	if err != nil {
		return nil, err
	}
	intent, err := b.chain.Intent(ctx, to, data)
	if err != nil {
		return nil, err
	}
	return b.chain.Submit(ctx, intent)
}

// TransferParams 使用路径参数形式的地址和金额转账
//
// 地址校验失败返回 ErrInvalidRecipient，且不会发起任何RPC。
func (b *Binding) TransferParams(ctx context.Context, to, amount string) (*ethtypes.Receipt, error) {
	if !chain.IsAddress(to) {
		return nil, ErrInvalidRecipient
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return b.Transfer(ctx, common.HexToAddress(to), value)
}
