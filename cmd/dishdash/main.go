package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dishdash/internal/cli"
	"dishdash/internal/infrastructure/config"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return cli.ExitError
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: cfg.App.Name,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return cli.ExitError
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.New(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		common.LogError("Failed to initialize client", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	defer app.Close()

	common.LogDebug("啟動應用",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	return app.Run(ctx, os.Args[1:])
}
