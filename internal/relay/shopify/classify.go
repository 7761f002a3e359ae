package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrDraftOrderNotFound 远端 404。草稿单完成后会被远端删除，
	// 所以"不存在"很可能意味着"已经转成正式订单了"
	ErrDraftOrderNotFound = errors.New("draft order not found")

	// ErrAlreadyPaid 远端报订单已支付，对调用方来说目标已达成
	ErrAlreadyPaid = errors.New("order already paid")

	// ErrRateLimited 远端限流，调用方应稍后重试，服务端不做内部重试
	ErrRateLimited = errors.New("shopify rate limited")
)

// APIError 商城平台的其他失败，保留远端诊断信息给运维看
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API error %d: %s", e.Status, e.Body)
}

// 远端这几类错误只有 free-text 没有结构化错误码，
// 字符串匹配是脆弱契约，全部集中在这一个文件，改文案只动这里
const (
	alreadyPaidMarker = "This order has been paid"
	rateLimitMarker   = "rate limit"
)

// classifyError 把远端错误响应归类为哨兵错误
func classifyError(status int, body string) error {
	switch {
	case status == http.StatusNotFound:
		return ErrDraftOrderNotFound
	case strings.Contains(body, alreadyPaidMarker):
		return ErrAlreadyPaid
	case status == http.StatusTooManyRequests || strings.Contains(strings.ToLower(body), rateLimitMarker):
		return ErrRateLimited
	default:
		return &APIError{Status: status, Body: body}
	}
}

// BusinessExpected 给熔断器用：业务可预期的错误不代表依赖不健康，
// 不计入熔断失败 (404 / 已支付 / 4xx 参数类)；限流和 5xx 计入
func BusinessExpected(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrDraftOrderNotFound) || errors.Is(err, ErrAlreadyPaid) {
		return true
	}
	if errors.Is(err, ErrRateLimited) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500
	}
	// 非分类错误 (网络 / 超时)：按失败计入 (更保守)
	return false
}
