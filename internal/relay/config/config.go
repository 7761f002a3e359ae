package config

import (
	"fmt"
	"time"
)

// 总配置，对应 config/relay-service.yaml
type RelayConfig struct {
	Name  string        `mapstructure:"name" json:"name" yaml:"name"`
	HTTP  HTTPConfig    `mapstructure:"http" json:"http" yaml:"http"`
	Log   LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
	Trace TraceConfig   `mapstructure:"trace" json:"trace" yaml:"trace"`
	CORS  CORSConfig    `mapstructure:"cors" json:"cors" yaml:"cors"`

	Shopify    ShopifyConfig    `mapstructure:"shopify" json:"shopify" yaml:"shopify"`
	Blockfrost BlockfrostConfig `mapstructure:"blockfrost" json:"blockfrost" yaml:"blockfrost"`
	Cardano    CardanoConfig    `mapstructure:"cardano" json:"cardano" yaml:"cardano"`
	Verify     VerifyConfig     `mapstructure:"verify" json:"verify" yaml:"verify"`
}

// HTTP 配置
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type TraceConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins" yaml:"allowOrigins"`
}

// Shopify 商城身份 + Admin API 访问令牌
type ShopifyConfig struct {
	ShopName    string `mapstructure:"shopName" yaml:"shopName"`       // 例如 staging-rq.myshopify.com
	AccessToken string `mapstructure:"accessToken" yaml:"accessToken"`
}

// Blockfrost 索引服务凭证 + 网络选择 (mainnet / preprod)
type BlockfrostConfig struct {
	ProjectID string `mapstructure:"projectId" yaml:"projectId"`
	Network   string `mapstructure:"network" yaml:"network"`
}

// Cardano 收款配置
type CardanoConfig struct {
	WalletAddress string `mapstructure:"walletAddress" yaml:"walletAddress"`
}

// Verify 链上校验重试预算，0 用默认 (20 次 × 5s)
type VerifyConfig struct {
	MaxAttempts int           `mapstructure:"maxAttempts" yaml:"maxAttempts"`
	RetryDelay  time.Duration `mapstructure:"retryDelay" yaml:"retryDelay"`
}

// Validate 身份 / 凭证缺失是启动期致命错误，不留到每个请求再报
func (c *RelayConfig) Validate() error {
	if c.Shopify.ShopName == "" {
		return fmt.Errorf("shopify.shopName is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("shopify.accessToken is required")
	}
	if c.Blockfrost.ProjectID == "" {
		return fmt.Errorf("blockfrost.projectId is required")
	}
	if c.Cardano.WalletAddress == "" {
		return fmt.Errorf("cardano.walletAddress is required")
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}
