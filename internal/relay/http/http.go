package http

import (
	"context"
	"net/http"
	"time"

	relayconfig "adarelay.com/internal/relay/config"
	"adarelay.com/internal/relay/handler"
	"adarelay.com/internal/relay/http/router"
	"adarelay.com/pkg/middleware"
	"adarelay.com/pkg/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(ctx context.Context, cfg *relayconfig.RelayConfig, wh *handler.Webhook) *http.Server {
	// 限流
	store := ratelimit.NewStore(50, 100, 10*time.Minute) // 50 rps，突发 100
	store.StartJanitor(ctx, time.Minute)

	// 监控
	r := gin.New()
	p := ginprom.NewPrometheus("adarelay")
	p.Use(r)

	// CORS: 只放行配置里的 storefront 来源
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(
		otelgin.Middleware(cfg.Name),
		middleware.ReqId(),
		cors.New(corsCfg),
		middleware.Recover(),
		middleware.RateLimit(store),
	)

	router.Webhook(r, wh)

	s := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
		// 注意：/webhook/payment 会在校验重试上最多阻塞 ~100s，
		// WriteTimeout 必须盖过 20×5s 的重试预算
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   150 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}
