package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tokengate/pkg/api"
	"tokengate/pkg/chain"
	"tokengate/pkg/config"
	"tokengate/pkg/contract"
	"tokengate/pkg/logger"
	"tokengate/pkg/reporter"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd 启动HTTP服务（无位置参数）
var rootCmd = &cobra.Command{
	Use:           "tokengate",
	Short:         "代币合约REST网关",
	Long:          "通过REST暴露代币合约的只读方法和转账接口",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

// methodsCmd 打印内嵌ABI的方法表
var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "列出合约ABI中的方法",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := contract.Load()
		if err != nil {
			return err
		}
		reporter.NewReporter(cmd.OutOrStdout()).PrintMethods(desc.Methods())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	// 1. 配置：启动时加载一次，之后只读
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 2. 合约描述 + 链客户端 + 绑定
	desc, err := contract.Load()
	if err != nil {
		return fmt.Errorf("加载ABI失败: %w", err)
	}

	client, err := chain.Dial(ctx, chain.Options{
		RPCURL:          cfg.RPCURL,
		PrivateKey:      cfg.PrivateKey,
		ContractAddress: cfg.ContractAddress,
		GasLimit:        cfg.GasLimit,
	}, desc.ABI())
	if err != nil {
		return fmt.Errorf("创建链客户端失败: %w", err)
	}
	defer client.Close()

	binding, err := contract.NewBinding(desc, client)
	if err != nil {
		return fmt.Errorf("创建合约绑定失败: %w", err)
	}

	// 3. HTTP服务
	gin.SetMode(cfg.GinMode)
	router := api.NewRouter(api.NewHandler(binding, log), api.NewMetrics(), log)

	reporter.NewReporter(os.Stdout).PrintStartup(reporter.StartupInfo{
		Addr:     cfg.Addr(),
		RPCURL:   cfg.RPCURL,
		Contract: client.Contract().Hex(),
		Sender:   client.Sender().Hex(),
		Routes:   api.Routes,
	}, desc.Methods())

	log.Info("starting tokengate",
		zap.String("addr", cfg.Addr()),
		zap.String("contract", client.Contract().Hex()),
		zap.String("sender", client.Sender().Hex()),
	)
	return api.NewServer(cfg.Addr(), router, log).Run(ctx)
}
