package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsAddress 校验地址格式：
// 0x前缀可选；全小写或全大写直接通过；大小写混合时必须符合EIP-55校验和
func IsAddress(s string) bool {
	if !common.IsHexAddress(s) {
		return false
	}
	hexPart := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return common.HexToAddress(hexPart).Hex()[2:] == hexPart
}
