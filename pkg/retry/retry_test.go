package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")
var errFatal = errors.New("boom")

// 假时钟：只记录等待次数，不真的睡
func fakeSleep(waits *int) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits++
		return nil
	}
}

func TestDo_SucceedsOnAttemptK(t *testing.T) {
	waits := 0
	p := Policy{MaxAttempts: 20, Delay: 5 * time.Second, Sleep: fakeSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 7 {
			return errNotFound
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errNotFound) })

	require.NoError(t, err)
	// 第 7 次成功：恰好 7 次调用、6 次等待
	assert.Equal(t, 7, calls)
	assert.Equal(t, 6, waits)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	waits := 0
	p := Policy{MaxAttempts: 20, Delay: 5 * time.Second, Sleep: fakeSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errNotFound
	}, func(err error) bool { return errors.Is(err, errNotFound) })

	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, 20, calls)
	// 最后一次失败后不再等待
	assert.Equal(t, 19, waits)
}

func TestDo_NonRetryableAbortsImmediately(t *testing.T) {
	waits := 0
	p := Policy{MaxAttempts: 20, Delay: 5 * time.Second, Sleep: fakeSleep(&waits)}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errFatal
	}, func(err error) bool { return errors.Is(err, errNotFound) })

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, waits)
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxAttempts: 20,
		Delay:       5 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel() // 第一次等待时请求被取消
			return ctx.Err()
		},
	}

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return errNotFound
	}, func(err error) bool { return errors.Is(err, errNotFound) })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{}
	calls := 0
	err := p.Do(context.Background(), func() error { calls++; return nil }, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
