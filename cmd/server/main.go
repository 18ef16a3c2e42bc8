package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/palemoky/card-smash/internal/config"
	"github.com/palemoky/card-smash/internal/logger"
	"github.com/palemoky/card-smash/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径（为空则只读环境变量）")
	logDir := flag.String("log-dir", "", "日志目录，默认 ~/.card-smash")
	flag.Parse()

	if err := logger.Init(*logDir); err != nil {
		log.Printf("⚠️ 日志文件初始化失败，输出到 stderr: %v", err)
	}
	defer logger.Close()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit
		log.Println("正在关闭服务器...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Game.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("关闭服务器出错: %v", err)
		}
	}()

	log.Printf("🎮 拍桌服务器启动中，监听 %s", cfg.Server.Addr())
	if err := srv.Start(); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
	<-done
	log.Println("👋 服务器已关闭")
}

// loadConfig 文件不存在时退回到默认配置加环境变量
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("配置文件 %s 不存在，使用默认配置", path)
		return config.FromEnv()
	}
	return cfg, err
}
