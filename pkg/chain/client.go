package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"tokengate/pkg/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrReverted 交易已上链但执行失败
var ErrReverted = errors.New("transaction has been reverted by the EVM")

// Backend 链客户端需要的RPC能力（*ethclient.Client 满足该接口）
type Backend interface {
	bind.ContractCaller

	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Options 构造 Client 所需的参数
type Options struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress string
	GasLimit        uint64
}

// Client 单个RPC端点 + 私钥 + 目标合约的封装
type Client struct {
	backend  Backend
	key      *ecdsa.PrivateKey
	sender   common.Address
	address  common.Address
	abi      abi.ABI
	gasLimit uint64
	contract *bind.BoundContract
	closer   func()
}

// Dial 连接RPC端点并创建 Client
func Dial(ctx context.Context, opts Options, parsed abi.ABI) (*Client, error) {
	key, err := ParsePrivateKey(opts.PrivateKey)
	if err != nil {
		return nil, err
	}
	if !IsAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", opts.ContractAddress)
	}

	ec, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc endpoint: %w", err)
	}

	c := NewClient(ec, key, common.HexToAddress(opts.ContractAddress), parsed, opts.GasLimit)
	c.closer = ec.Close
	return c, nil
}

// NewClient 基于已有的 Backend 创建 Client
func NewClient(backend Backend, key *ecdsa.PrivateKey, address common.Address, parsed abi.ABI, gasLimit uint64) *Client {
	return &Client{
		backend:  backend,
		key:      key,
		sender:   crypto.PubkeyToAddress(key.PublicKey),
		address:  address,
		abi:      parsed,
		gasLimit: gasLimit,
		contract: bind.NewBoundContract(address, parsed, backend, nil, nil),
	}
}

// ParsePrivateKey 解析十六进制私钥（允许0x前缀）
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("private key is empty")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// Close 关闭底层RPC连接
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Sender 签名账户地址
func (c *Client) Sender() common.Address {
	return c.sender
}

// Contract 目标合约地址
func (c *Client) Contract() common.Address {
	return c.address
}

// Call 只读调用，返回按ABI解码后的结果
func (c *Client) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Pack 按合约ABI编码一次方法调用
func (c *Client) Pack(method string, args ...interface{}) ([]byte, error) {
	return c.abi.Pack(method, args...)
}

// Intent 构造一次交易意图（查询一次chainId）
func (c *Client) Intent(ctx context.Context, recipient common.Address, data []byte) (*types.TransactionIntent, error) {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &types.TransactionIntent{
		From:      c.sender,
		Recipient: recipient,
		Contract:  c.address,
		GasLimit:  c.gasLimit,
		Data:      data,
		ChainID:   chainID,
	}, nil
}

// Submit 签名并广播交易，阻塞直到拿到receipt
//
// 单次尝试，不做重试；nonce 直接取 pending nonce，并发请求之间不做排序。
func (c *Client) Submit(ctx context.Context, intent *types.TransactionIntent) (*ethtypes.Receipt, error) {
	if intent.From != c.sender {
		return nil, fmt.Errorf("intent sender %s does not match signer %s", intent.From.Hex(), c.sender.Hex())
	}

	nonce, err := c.backend.PendingNonceAt(ctx, intent.From)
	if err != nil {
		return nil, err
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	to := intent.Contract
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      intent.GasLimit,
		To:       &to,
		Value:    new(big.Int),
		Data:     intent.Data,
	})
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(intent.ChainID), c.key)
	if err != nil {
		return nil, err
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, c.backend, signed)
	if err != nil {
		return nil, err
	}
	if receipt.Status == ethtypes.ReceiptStatusFailed {
		return receipt, fmt.Errorf("%w: %s", ErrReverted, signed.Hash().Hex())
	}
	return receipt, nil
}
