package ratelimit

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Rule struct {
	// Half-Open 状态允许通过的探测请求数（MaxRequests=0 时库会当作 1）
	MaxRequests uint32

	// Closed 状态计数窗口
	Interval time.Duration

	// Rolling window 每个 bucket 周期（>0 则启用 rolling window；<=0 用 fixed window）
	BucketPeriod time.Duration

	// Open 状态持续时间，到期进入 Half-Open
	Timeout time.Duration

	// 触发熔断条件（两种之一即可）
	TripConsecutiveFailures uint32  // 连续失败阈值（建议 10~50）
	TripFailureRate         float64 // 失败率阈值（0~1），比如 0.5
	TripMinRequests         uint32  // 失败率计算的最小样本数，比如 20
}

// Manager 按外呼操作名管理熔断器
// isSuccessful 由调用方注入：业务可预期的错误（404 / already-paid / 参数错）
// 不代表依赖不健康，不应计入熔断失败
type Manager[T any] struct {
	mu sync.RWMutex
	m  map[string]*gobreaker.CircuitBreaker[T]

	defaultRule  Rule
	rules        map[string]Rule
	isSuccessful func(error) bool
}

func NewManager[T any](defaultRule Rule, perOp map[string]Rule, isSuccessful func(error) bool) *Manager[T] {
	if defaultRule.MaxRequests == 0 {
		defaultRule.MaxRequests = 5
	}
	if defaultRule.Timeout <= 0 {
		defaultRule.Timeout = 3 * time.Second
	}
	if defaultRule.Interval <= 0 {
		defaultRule.Interval = 10 * time.Second
	}
	if defaultRule.TripConsecutiveFailures == 0 && defaultRule.TripFailureRate == 0 {
		defaultRule.TripConsecutiveFailures = 10
	}
	if defaultRule.TripMinRequests == 0 {
		defaultRule.TripMinRequests = 20
	}
	if isSuccessful == nil {
		isSuccessful = func(err error) bool { return err == nil }
	}

	return &Manager[T]{
		m:            make(map[string]*gobreaker.CircuitBreaker[T], 8),
		defaultRule:  defaultRule,
		rules:        perOp,
		isSuccessful: isSuccessful,
	}
}

func (m *Manager[T]) Get(op string) *gobreaker.CircuitBreaker[T] {
	// 快路径：读锁
	m.mu.RLock()
	cb := m.m[op]
	m.mu.RUnlock()
	if cb != nil {
		return cb
	}

	// 慢路径：创建
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb = m.m[op]; cb != nil {
		return cb
	}

	rule, ok := m.rules[op]
	if !ok {
		rule = m.defaultRule
	}
	st := gobreaker.Settings{
		Name:         op,
		MaxRequests:  rule.MaxRequests,
		Interval:     rule.Interval,
		BucketPeriod: rule.BucketPeriod,
		Timeout:      rule.Timeout,

		ReadyToTrip: func(c gobreaker.Counts) bool {
			// 1) 连续失败阈值优先（最直观）
			if rule.TripConsecutiveFailures > 0 && c.ConsecutiveFailures >= rule.TripConsecutiveFailures {
				return true
			}
			// 2) 失败率阈值（适合波动流量）
			if rule.TripFailureRate > 0 && c.Requests >= rule.TripMinRequests {
				failRate := float64(c.TotalFailures) / float64(c.Requests)
				return failRate >= rule.TripFailureRate
			}
			return false
		},

		IsSuccessful: m.isSuccessful,
	}

	cb = gobreaker.NewCircuitBreaker[T](st)
	m.m[op] = cb
	return cb
}
