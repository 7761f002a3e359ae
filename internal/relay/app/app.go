package app

import (
	"context"
	"log"
	"net/http"

	"adarelay.com/internal/relay/chain"
	relayconfig "adarelay.com/internal/relay/config"
	"adarelay.com/internal/relay/flow"
	"adarelay.com/internal/relay/handler"
	relayhttp "adarelay.com/internal/relay/http"
	"adarelay.com/internal/relay/shopify"
	vipConfig "adarelay.com/pkg/config"
	"adarelay.com/pkg/logger"
	"adarelay.com/pkg/metrics"
	"adarelay.com/pkg/retry"
	"adarelay.com/pkg/trace"
)

type App struct {
	ctx           context.Context
	cfg           relayconfig.RelayConfig
	flow          *flow.Flow
	traceShutdown func(context.Context) error
}

func New(configName string) (*App, error) {
	// 加载配置
	var cfg = &relayconfig.RelayConfig{}
	if configName == "" {
		configName = "relay-service"
	}
	if _, err := vipConfig.LoadAndWatch(configName, cfg); err != nil {
		return nil, err
	}
	// 凭证缺失直接拒绝启动
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{
		cfg: *cfg,
	}
	return app, nil
}

func (app *App) StartService(ctx context.Context, serviceName string) func() {
	if serviceName == "" {
		serviceName = app.cfg.Name
	}
	logger.Init(serviceName, app.cfg.Log.Level)
	metrics.MustRegister()

	app.ctx = ctx
	// 启动trace (配了 collector 地址才开)
	if app.cfg.Trace.Host != "" {
		app.startTrace(serviceName)
	}
	// 组装协作方：索引客户端 -> 校验器；商城客户端 -> 网关；二者注入对账流程
	app.buildFlow()

	// 返回需要关闭的资源
	var cleanUp = func() {
		if app.traceShutdown != nil {
			_ = app.traceShutdown(ctx)
		}
		logger.Sync()
	}
	return cleanUp
}

func (app *App) StartHttp() *http.Server {
	wh := handler.NewWebhook(app.flow)
	return relayhttp.NewRouter(app.ctx, &app.cfg, wh)
}

func (app *App) startTrace(serviceName string) {
	tracerShutdown, err := trace.InitTrace(serviceName, app.cfg.Trace.Host)
	if err != nil {
		log.Fatal("init tracer error: ", err)
	}
	app.traceShutdown = tracerShutdown
}

func (app *App) buildFlow() {
	bf, err := chain.NewClient(app.cfg.Blockfrost.Network, app.cfg.Blockfrost.ProjectID)
	if err != nil {
		log.Fatalf("init blockfrost client: %v", err)
	}

	policy := chain.DefaultPolicy()
	if app.cfg.Verify.MaxAttempts > 0 {
		policy = retry.Policy{
			MaxAttempts: app.cfg.Verify.MaxAttempts,
			Delay:       app.cfg.Verify.RetryDelay,
		}
	}
	verifier := chain.NewVerifier(bf, app.cfg.Cardano.WalletAddress, policy)

	gateway := shopify.New(app.cfg.Shopify.ShopName, app.cfg.Shopify.AccessToken)

	app.flow = flow.New(verifier, gateway)
}
