package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mindwell-app/mindwell/internal/bootstrap"
	"github.com/mindwell-app/mindwell/internal/httpapi"
	"github.com/mindwell-app/mindwell/internal/pkg/buildinfo"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "配置文件路径")
	flag.Parse()

	core, err := bootstrap.NewCore(cfgPath)
	if err != nil {
		slog.Error("初始化失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core.StartCatalogWatch(ctx)

	srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: core.Cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP 失败", "error", err)
		os.Exit(1)
	}

	slog.Info("进度引擎已启动",
		"version", buildinfo.Version,
		"base_url", srv.BaseURL(),
		"safe_mode", core.DB.SafeMode,
	)

	<-ctx.Done()
	slog.Info("收到退出信号，正在关闭")
}
