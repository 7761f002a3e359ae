package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adarelay.com/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init("shopify-test", "error")
	m.Run()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseHost(srv.URL, "test-token")
}

func TestClient_CreateDraftOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/draft_orders.json", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			DraftOrder DraftOrderInput `json:"draft_order"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Len(t, payload.DraftOrder.LineItems, 1)
		assert.Equal(t, int64(111), payload.DraftOrder.LineItems[0].VariantID)

		w.Write([]byte(`{"draft_order":{"id":987654321,"status":"open"}}`))
	})

	id, err := c.CreateDraftOrder(context.Background(), DraftOrderInput{
		LineItems: []LineItem{{VariantID: 111, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(987654321), id)
}

func TestClient_GetDraftOrder_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":"Not Found"}`))
	})

	_, err := c.GetDraftOrder(context.Background(), "123")
	assert.ErrorIs(t, err, ErrDraftOrderNotFound)
}

func TestClient_CompleteDraftOrder_OrderIDShapes(t *testing.T) {
	// 远端历史上给过两种成功形状，都要能取到订单号
	cases := []struct {
		name string
		body string
		want int64
	}{
		{"draft_order.order_id", `{"draft_order":{"id":1,"order_id":555}}`, 555},
		{"order.id", `{"order":{"id":777}}`, 777},
		{"解析不出订单号也算成功", `{"something":"else"}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/admin/api/2024-01/draft_orders/123/complete.json", r.URL.Path)
				w.Write([]byte(tc.body))
			})

			comp, err := c.CompleteDraftOrder(context.Background(), "123")
			require.NoError(t, err)
			assert.Equal(t, tc.want, comp.OrderID)
			assert.False(t, comp.AlreadyPaid)
		})
	}
}

func TestClient_CompleteDraftOrder_AlreadyPaidIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"base":["This order has been paid"]}}`))
	})

	comp, err := c.CompleteDraftOrder(context.Background(), "123")
	require.NoError(t, err)
	assert.True(t, comp.AlreadyPaid)
	assert.Zero(t, comp.OrderID)
}

func TestClient_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":"Exceeded 2 calls per second for api client"}`))
	})

	_, err := c.CompleteDraftOrder(context.Background(), "123")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestClient_UpdateOrder(t *testing.T) {
	var got map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/2024-01/orders/555.json", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"order":{"id":555}}`))
	})

	err := c.UpdateOrder(context.Background(), 555, OrderUpdate{
		FinancialStatus: "paid",
		Note:            "Paid with Cardano ADA",
		NoteAttributes:  []NoteAttribute{{Name: "cardano_transaction", Value: "abc"}},
		Tags:            "cardano-payment",
	})
	require.NoError(t, err)

	var order struct {
		ID int64 `json:"id"`
		OrderUpdate
	}
	require.NoError(t, json.Unmarshal(got["order"], &order))
	assert.Equal(t, int64(555), order.ID)
	assert.Equal(t, "paid", order.FinancialStatus)
	assert.Equal(t, "cardano-payment", order.Tags)
}

func TestClient_EnsureCustomer(t *testing.T) {
	t.Run("创建成功", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/api/2024-01/graphql.json", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "customerCreate")
			w.Write([]byte(`{"data":{"customerCreate":{"customer":{"id":"gid://shopify/Customer/1"},"userErrors":[]}}}`))
		})
		err := c.EnsureCustomer(context.Background(), CustomerInput{Email: "a@b.com"})
		assert.NoError(t, err)
	})

	t.Run("邮箱已存在算成功", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"customerCreate":{"customer":null,"userErrors":[{"field":["email"],"message":"Email has already been taken"}]}}}`))
		})
		err := c.EnsureCustomer(context.Background(), CustomerInput{Email: "a@b.com"})
		assert.NoError(t, err)
	})

	t.Run("其他 userError 报出来", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"customerCreate":{"customer":null,"userErrors":[{"field":["phone"],"message":"Phone is invalid"}]}}}`))
		})
		err := c.EnsureCustomer(context.Background(), CustomerInput{Email: "a@b.com", Phone: "bad"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Phone is invalid")
	})

	t.Run("没有邮箱直接跳过", func(t *testing.T) {
		c := NewWithBaseHost("http://127.0.0.1:1", "t") // 不该发任何请求
		assert.NoError(t, c.EnsureCustomer(context.Background(), CustomerInput{}))
	})
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"404 转哨兵", 404, `{"errors":"Not Found"}`, ErrDraftOrderNotFound},
		{"已支付文案", 422, `{"errors":{"base":["This order has been paid"]}}`, ErrAlreadyPaid},
		{"429 状态码", 429, "slow down", ErrRateLimited},
		{"文案里的 rate limit", 400, "Exceeded rate limit, try later", ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tc.status, tc.body), tc.want)
		})
	}

	t.Run("其他错误保留诊断信息", func(t *testing.T) {
		err := classifyError(500, "Internal Server Error")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 500, apiErr.Status)
	})
}

func TestBusinessExpected(t *testing.T) {
	assert.True(t, BusinessExpected(nil))
	assert.True(t, BusinessExpected(ErrDraftOrderNotFound))
	assert.True(t, BusinessExpected(ErrAlreadyPaid))
	assert.True(t, BusinessExpected(&APIError{Status: 422, Body: "unprocessable"}))

	// 限流 / 5xx / 网络错误要计入熔断
	assert.False(t, BusinessExpected(ErrRateLimited))
	assert.False(t, BusinessExpected(&APIError{Status: 503, Body: "unavailable"}))
	assert.False(t, BusinessExpected(context.DeadlineExceeded))
}

func TestClient_CircuitOpensAfterConsecutiveServerErrors(t *testing.T) {
	var hits int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	// 连续 10 次 5xx 之后熔断打开，后续请求不再打到远端
	for i := 0; i < 10; i++ {
		_, err := c.GetDraftOrder(context.Background(), "1")
		require.Error(t, err)
	}
	require.Equal(t, 10, hits)

	_, err := c.GetDraftOrder(context.Background(), "1")
	require.Error(t, err)
	// 熔断打开归一化成限流信号，调用方拿到的是"稍后重试"
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 10, hits)
}

func TestNewWithBaseHost_StripsScheme(t *testing.T) {
	c := NewWithBaseHost("http://127.0.0.1:8080", "t")
	assert.Equal(t, "http", c.scheme)
	assert.False(t, strings.Contains(c.shop, "http://"))
}
