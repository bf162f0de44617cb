package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/token.json
var tokenABI []byte

// Mutability 方法的可变性标签
type Mutability string

const (
	MutabilityRead        Mutability = "read"
	MutabilityWrite       Mutability = "write"
	MutabilityConstructor Mutability = "constructor"
	MutabilityEvent       Mutability = "event"
)

// Param 方法的单个输入/输出参数
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method 合约接口中的一个条目
type Method struct {
	Name       string     `json:"name"`
	Inputs     []Param    `json:"inputs"`
	Outputs    []Param    `json:"outputs"`
	Mutability Mutability `json:"mutability"`
}

// Descriptor 合约接口描述（启动时加载一次，之后只读）
type Descriptor struct {
	methods []Method
	index   map[string]int
	parsed  abi.ABI
}

// abiEntry ABI JSON 中的原始条目
type abiEntry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`
	Constant        bool    `json:"constant"`
}

// Load 加载内嵌的代币合约ABI
func Load() (*Descriptor, error) {
	return Parse(tokenABI)
}

// Parse 解析ABI JSON，保留条目原有顺序
func Parse(raw []byte) (*Descriptor, error) {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}

	var entries []abiEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode abi entries: %w", err)
	}

	d := &Descriptor{
		methods: make([]Method, 0, len(entries)),
		index:   make(map[string]int),
		parsed:  parsed,
	}
	for _, e := range entries {
		m := Method{
			Name:       e.Name,
			Inputs:     nonNil(e.Inputs),
			Outputs:    nonNil(e.Outputs),
			Mutability: mutabilityOf(e),
		}
		if m.Mutability == "" {
			// fallback/receive 没有可调用的名字
			continue
		}
		if m.Name != "" {
			// 同名时函数优先于事件
			if prev, dup := d.index[m.Name]; !dup || d.methods[prev].Mutability == MutabilityEvent {
				d.index[m.Name] = len(d.methods)
			}
		}
		d.methods = append(d.methods, m)
	}
	return d, nil
}

// mutabilityOf 将ABI的type/stateMutability映射为可变性标签
func mutabilityOf(e abiEntry) Mutability {
	switch e.Type {
	case "constructor":
		return MutabilityConstructor
	case "event":
		return MutabilityEvent
	case "function", "":
		if e.StateMutability == "view" || e.StateMutability == "pure" || e.Constant {
			return MutabilityRead
		}
		return MutabilityWrite
	}
	return ""
}

func nonNil(p []Param) []Param {
	if p == nil {
		return []Param{}
	}
	return p
}

// Methods 返回全部条目（按ABI中的顺序）
func (d *Descriptor) Methods() []Method {
	out := make([]Method, len(d.methods))
	copy(out, d.methods)
	return out
}

// Lookup 按名字查找条目
func (d *Descriptor) Lookup(name string) (Method, bool) {
	i, ok := d.index[name]
	if !ok {
		return Method{}, false
	}
	return d.methods[i], true
}

// ABI 返回用于编码调用的解析结果
func (d *Descriptor) ABI() abi.ABI {
	return d.parsed
}
