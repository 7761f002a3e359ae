package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"adarelay.com/internal/relay/app"
)

func main() {
	// 1. 支持 Ctrl+C / kubernetes 停止信号的 context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化 App
	relayApp, err := app.New("relay-service")
	if err != nil {
		log.Fatalf("init relay-service error: %v", err)
	}
	//  启动服务
	cleanUp := relayApp.StartService(ctx, "relay-service")
	defer cleanUp()
	srv := relayApp.StartHttp()
	// 4. 启动app
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("relay ListenAndServe error: %v", err)
		}
	}()
	<-ctx.Done()
	// 宽限时间要盖过还在 Blockfrost 重试里的请求? 不必, 5s 内放弃, 客户端会重试
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("relay shutdown error: %v", err)
	}
	log.Println("relay exit")
}
