package xerr

import (
	"errors"
	"fmt"
)

// 业务错误码定义 (见 §支付对账错误分类)
const (
	OK = 200

	// 入参校验失败，未发起任何远端调用
	ValidationError = 2001001
	// 链上校验跑通了，但没有找到满足条件的 output
	PaymentInvalid = 2002001
	// 索引服务重试耗尽 / 非 not-found 故障，尚未发生订单变更，整体可重试
	VerificationUnavailable = 2002002
	// 远端限流，带 shouldRetry 提示返回给调用方，服务端绝不静默重试
	RateLimited = 2003001
	// 商城平台的其他失败，带远端诊断信息
	ServerCommonError = 5000000
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func Newf(code int, format string, args ...interface{}) error {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// FromError 提取业务错误码；不是 CodeError 时按 ServerCommonError 处理
func FromError(err error) *CodeError {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce
	}
	return &CodeError{Code: ServerCommonError, Msg: err.Error()}
}

// IsCode 判断错误是否属于某个业务码
func IsCode(err error, code int) bool {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
