package retry

import (
	"context"
	"time"
)

// Policy 有界固定间隔重试
// 索引服务的最终一致性是正常工况不是故障：刚上链的交易会 404 一小段时间，
// 所以只对 retryable 判定为 true 的错误重试，其余错误立刻放弃
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// 测试注入假时钟用；为 nil 时走真实 sleep
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do 执行 op，直到成功 / 不可重试 / 次数耗尽 / ctx 取消
// 返回最后一次的错误
func (p Policy) Do(ctx context.Context, op func() error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = realSleep
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = op(); err == nil {
			return nil
		}
		if retryable == nil || !retryable(err) {
			return err
		}
		// 最后一次失败后不再等待
		if i == attempts-1 {
			break
		}
		if serr := sleep(ctx, p.Delay); serr != nil {
			return serr
		}
	}
	return err
}

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
