package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adarelay.com/pkg/logger"
	"adarelay.com/pkg/metrics"
	"adarelay.com/pkg/ratelimit"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const defaultAPIVersion = "2024-01"

// Client Shopify Admin API 客户端
// 所有外呼都包一层熔断器：远端连续 5xx / 超时时快速失败，
// 业务可预期错误 (BusinessExpected) 不触发熔断
type Client struct {
	shop       string // 例如 staging-rq.myshopify.com
	token      string
	apiVersion string
	scheme     string
	httpClient *http.Client
	breakers   *ratelimit.Manager[[]byte]
}

func New(shop, token string) *Client {
	return &Client{
		shop:       shop,
		token:      token,
		apiVersion: defaultAPIVersion,
		scheme:     "https",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breakers: ratelimit.NewManager[[]byte](ratelimit.Rule{
			TripConsecutiveFailures: 10,
			Timeout:                 30 * time.Second,
		}, nil, BusinessExpected),
	}
}

// NewWithBaseHost 测试用：把请求指到 httptest 替身 (http + host:port)
func NewWithBaseHost(host, token string) *Client {
	c := New(strings.TrimPrefix(strings.TrimPrefix(host, "http://"), "https://"), token)
	c.scheme = "http"
	return c
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s://%s/admin/api/%s/%s", c.scheme, c.shop, c.apiVersion, path)
}

// do 外呼入口：op 是熔断器的 key，payload 为 nil 时不带 body
func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}) ([]byte, error) {
	cb := c.breakers.Get(op)
	data, err := cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CBRejectTotal.WithLabelValues("relay-service", op).Inc()
			// 熔断打开时给调用方和真限流一样的信号：稍后重试
			return nil, fmt.Errorf("%w: circuit open for %s", ErrRateLimited, op)
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyError(resp.StatusCode, string(data))
	}
	return data, nil
}

// CreateDraftOrder 创建草稿单，返回草稿单 id
func (c *Client) CreateDraftOrder(ctx context.Context, input DraftOrderInput) (int64, error) {
	payload := map[string]DraftOrderInput{"draft_order": input}
	data, err := c.do(ctx, "create_draft_order", http.MethodPost, "draft_orders.json", payload)
	if err != nil {
		return 0, err
	}

	var resp struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal draft order: %w", err)
	}
	if resp.DraftOrder.ID == 0 {
		return 0, fmt.Errorf("draft order response missing id")
	}
	return resp.DraftOrder.ID, nil
}

// GetDraftOrder 取草稿单快照，404 -> ErrDraftOrderNotFound
func (c *Client) GetDraftOrder(ctx context.Context, id string) (*DraftOrder, error) {
	data, err := c.do(ctx, "get_draft_order", http.MethodGet, "draft_orders/"+id+".json", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal draft order: %w", err)
	}
	return &resp.DraftOrder, nil
}

// CompleteDraftOrder 完成草稿单
// 远端"已支付"归一化为成功 (AlreadyPaid=true，拿不到订单号)
// 成功响应解析不出来时也按成功处理：钱已收，宁可少一个订单号也不报失败
func (c *Client) CompleteDraftOrder(ctx context.Context, id string) (*Completion, error) {
	data, err := c.do(ctx, "complete_draft_order", http.MethodPut, "draft_orders/"+id+"/complete.json", nil)
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			logger.Info(ctx, "draft order already paid, treating as success",
				zap.String("draft_order_id", id))
			return &Completion{AlreadyPaid: true}, nil
		}
		return nil, err
	}

	// 远端历史上给过两种形状：draft_order.order_id 和 order.id，都认
	var resp struct {
		DraftOrder *struct {
			OrderID int64 `json:"order_id"`
		} `json:"draft_order"`
		Order *struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn(ctx, "complete response parse failed, order likely completed",
			zap.String("draft_order_id", id), zap.Error(err))
		return &Completion{}, nil
	}

	comp := &Completion{}
	if resp.DraftOrder != nil && resp.DraftOrder.OrderID != 0 {
		comp.OrderID = resp.DraftOrder.OrderID
	} else if resp.Order != nil {
		comp.OrderID = resp.Order.ID
	}
	return comp, nil
}

// UpdateOrder 给正式订单写支付注解 (财务状态 / 备注 / note_attributes)
// 失败由调用方降级处理，这里只返回错误
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, upd OrderUpdate) error {
	payload := map[string]interface{}{
		"order": struct {
			ID int64 `json:"id"`
			OrderUpdate
		}{ID: orderID, OrderUpdate: upd},
	}
	_, err := c.do(ctx, "update_order", http.MethodPut, fmt.Sprintf("orders/%d.json", orderID), payload)
	return err
}
