package contract

// Operation 已知可调用的合约操作
type Operation uint8

const (
	OpBalanceOf Operation = iota + 1
	OpDecimals
	OpIsTokenHolder
	OpName
	OpSymbol
	OpTotalSupply
	OpTransfer
)

// operationSig 每个操作的方法名、参数类型、返回类型和可变性
type operationSig struct {
	method     string
	inputs     []string
	outputs    []string
	mutability Mutability
}

var operationSigs = map[Operation]operationSig{
	OpBalanceOf:     {"balanceOf", []string{"address"}, []string{"uint256"}, MutabilityRead},
	OpDecimals:      {"decimals", nil, []string{"uint8"}, MutabilityRead},
	OpIsTokenHolder: {"isTokenHolder", []string{"address"}, []string{"bool"}, MutabilityRead},
	OpName:          {"name", nil, []string{"string"}, MutabilityRead},
	OpSymbol:        {"symbol", nil, []string{"string"}, MutabilityRead},
	OpTotalSupply:   {"totalSupply", nil, []string{"uint256"}, MutabilityRead},
	OpTransfer:      {"transfer", []string{"address", "uint256"}, []string{"bool"}, MutabilityWrite},
}

// Method 操作对应的ABI方法名
func (op Operation) Method() string {
	return operationSigs[op].method
}

// Arity 操作需要的参数个数
func (op Operation) Arity() int {
	return len(operationSigs[op].inputs)
}

func (op Operation) String() string {
	if s, ok := operationSigs[op]; ok {
		return s.method
	}
	return "unknown"
}
