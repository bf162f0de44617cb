package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvRPCURL          = "INFURA_URL"
	EnvPrivateKey      = "PRIVATE_KEY"
	EnvContractAddress = "CONTRACT_ADDRESS"
	EnvPort            = "PORT"
	EnvGasLimit        = "GAS_LIMIT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFile         = "LOG_FILE"
	EnvGinMode         = "GIN_MODE"
)

// 默认值
const (
	DefaultPort     = 3000
	DefaultGasLimit = 2_000_000
	DefaultLogLevel = "info"
	DefaultGinMode  = "release"
)

// Config 进程级配置，启动时加载一次，之后只读
type Config struct {
	RPCURL          string // RPC端点（Infura/Alchemy等）
	PrivateKey      string // 发送方私钥（十六进制）
	ContractAddress string // 已部署的合约地址
	Port            int
	GasLimit        uint64
	LogLevel        string
	LogFile         string // 为空时只输出到控制台
	GinMode         string
}

// Load 加载配置：先读取 .env（不存在则忽略），再读取环境变量
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv 只从当前进程环境变量读取配置
func FromEnv() (Config, error) {
	cfg := Config{
		RPCURL:          strings.TrimSpace(os.Getenv(EnvRPCURL)),
		PrivateKey:      strings.TrimSpace(os.Getenv(EnvPrivateKey)),
		ContractAddress: strings.TrimSpace(os.Getenv(EnvContractAddress)),
		Port:            DefaultPort,
		GasLimit:        DefaultGasLimit,
		LogLevel:        envOr(EnvLogLevel, DefaultLogLevel),
		LogFile:         strings.TrimSpace(os.Getenv(EnvLogFile)),
		GinMode:         envOr(EnvGinMode, DefaultGinMode),
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Port = port
	}
	if v := os.Getenv(EnvGasLimit); v != "" {
		gas, err := strconv.ParseUint(v, 10, 64)
		if err != nil || gas == 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvGasLimit, v)
		}
		cfg.GasLimit = gas
	}
	return cfg, nil
}

// Validate 检查必填项
func (c Config) Validate() error {
	var missing []string
	if c.RPCURL == "" {
		missing = append(missing, EnvRPCURL)
	}
	if c.PrivateKey == "" {
		missing = append(missing, EnvPrivateKey)
	}
	if c.ContractAddress == "" {
		missing = append(missing, EnvContractAddress)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid %s %q", EnvGinMode, c.GinMode)
	}
	return nil
}

// Addr HTTP监听地址
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
