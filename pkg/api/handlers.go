package api

import (
	"context"
	"errors"
	"net/http"

	"tokengate/pkg/contract"
	"tokengate/pkg/types"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 固定的客户端错误信息
const (
	MsgMethodNotInABI   = "Method does not exist in ABI"
	MsgInvalidField     = "Invalid field name or incorrect method usage"
	MsgInvalidRecipient = "Invalid recipient address"
)

// Contract 处理器依赖的合约能力（*contract.Binding 满足该接口）
type Contract interface {
	Read(ctx context.Context, method string, args ...string) (interface{}, error)
	TransferParams(ctx context.Context, to, amount string) (*ethtypes.Receipt, error)
}

// Handler 合约REST接口处理器
type Handler struct {
	contract Contract
	log      *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(c Contract, log *zap.Logger) *Handler {
	return &Handler{contract: c, log: log}
}

// Exec GET /exec/:method/:arg?
func (h *Handler) Exec(c *gin.Context) {
	method := c.Param("method")
	result, err := h.contract.Read(c.Request.Context(), method, optionalArg(c)...)
	if err != nil {
		h.fail(c, err, MsgMethodNotInABI)
		return
	}
	c.JSON(http.StatusOK, types.ExecResponse{Method: method, Result: result})
}

// Get GET /get/:field/:arg?
func (h *Handler) Get(c *gin.Context) {
	field := c.Param("field")
	result, err := h.contract.Read(c.Request.Context(), field, optionalArg(c)...)
	if err != nil {
		h.fail(c, err, MsgInvalidField)
		return
	}
	c.JSON(http.StatusOK, types.FieldResponse{Field: field, Result: result})
}

// Transfer POST /transfer/:to/:amount
func (h *Handler) Transfer(c *gin.Context) {
	to, amount := c.Param("to"), c.Param("amount")

	receipt, err := h.contract.TransferParams(c.Request.Context(), to, amount)
	if err != nil {
		h.fail(c, err, MsgInvalidRecipient)
		return
	}

	h.log.Info("transfer confirmed",
		zap.String("request_id", GetRequestID(c)),
		zap.String("to", to),
		zap.String("amount", amount),
		zap.String("tx_hash", receipt.TxHash.Hex()),
	)
	c.JSON(http.StatusOK, types.TransferResponse{Receipt: receipt})
}

// fail 校验类错误返回400和固定信息，其余错误返回500和原始信息
func (h *Handler) fail(c *gin.Context, err error, badRequestMsg string) {
	if errors.Is(err, contract.ErrUnknownMethod) || errors.Is(err, contract.ErrInvalidRecipient) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: badRequestMsg})
		return
	}

	_ = c.Error(err)
	h.log.Error("contract request failed",
		zap.String("request_id", GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
}

func optionalArg(c *gin.Context) []string {
	if arg, ok := c.Params.Get("arg"); ok {
		return []string{arg}
	}
	return nil
}
