package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clickboard/clicks/config"
	_ "clickboard/clicks/pkg/handler"
	"clickboard/clicks/pkg/render"
	"clickboard/clicks/pkg/scheduler"
	_ "clickboard/clicks/pkg/tracker"
	"clickboard/tools/ioc"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	once := flag.Bool("once", false, "fetch once, print the rendered data to stdout and exit")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := cfg.GetLogger()

	if *once {
		runOnce(context.Background(), cfg, os.Stdout)
		return
	}

	log.Info("Starting clicks board service, source=%s", cfg.ClicksURL)

	// 初始化 IOC 容器
	if err := ioc.Api.Init(); err != nil {
		log.Fatal("Failed to init ioc: %v", err)
		os.Exit(1)
	}

	// 注册 Prometheus 指标接口
	cfg.Application.GinServer().GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 定时刷新
	var schedulerDone <-chan struct{}
	if cfg.RefreshInterval > 0 {
		schedulerDone = scheduler.New(cfg.GetRenderer(), cfg.RefreshInterval, log).Start(ctx)
	} else {
		go cfg.GetRenderer().Run(ctx)
	}

	// 配置HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      cfg.Application.GinServer(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("Server starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()
	if schedulerDone != nil {
		<-schedulerDone
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

// runOnce 拉取一次并把结果写到 w，失败只写诊断日志，退出码始终为 0
func runOnce(ctx context.Context, cfg *config.Config, w io.Writer) {
	log := cfg.GetLogger()
	target := render.NewWriterTarget(cfg.TargetID, w)
	render.New(cfg.ClicksURL, cfg.HTTPClient(), target, log, render.WithLogger(log)).Run(ctx)
}
