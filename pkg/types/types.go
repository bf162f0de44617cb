package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// ExecResponse /exec 接口的成功响应
type ExecResponse struct {
	Method string      `json:"method"`
	Result interface{} `json:"result"`
}

// FieldResponse /get 接口的成功响应
type FieldResponse struct {
	Field  string      `json:"field"`
	Result interface{} `json:"result"`
}

// TransferResponse /transfer 接口的成功响应
type TransferResponse struct {
	Receipt *ethtypes.Receipt `json:"receipt"`
}

// ErrorResponse 所有接口统一的错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// TransactionIntent 待签名交易的完整描述（每个请求构造一次，提交后丢弃）
type TransactionIntent struct {
	From      common.Address `json:"from"`      // 发送方（由私钥推导）
	Recipient common.Address `json:"recipient"` // 代币接收方
	Contract  common.Address `json:"contract"`  // 交易目标合约
	GasLimit  uint64         `json:"gas_limit"`
	Data      []byte         `json:"data"` // ABI编码后的调用数据
	ChainID   *big.Int       `json:"chain_id"`
}
