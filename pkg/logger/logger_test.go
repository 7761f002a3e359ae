package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogger_Info_WithTraceID(t *testing.T) {
	// 1. 劫持日志输出到内存 Buffer
	buffer := &bytes.Buffer{}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buffer), // 关键点：写入 buffer 而不是控制台
		zap.InfoLevel,
	)

	// 2. 替换全局 Log 变量 (模拟 Init)
	Log = zap.New(core)

	// 3. 准备带有 TraceID 的 Context
	traceVal := "test-trace-12345"
	ctx := context.WithValue(context.Background(), TraceIdKey, traceVal)

	// 4. 调用封装的 Info 方法
	Info(ctx, "支付校验日志", zap.String("order_id", "D123"), zap.String("tx", "abc"))

	// 5. 解析输出结果
	var entry map[string]interface{}
	err := json.Unmarshal(buffer.Bytes(), &entry)
	assert.NoError(t, err)

	assert.Equal(t, "支付校验日志", entry["msg"])
	assert.Equal(t, traceVal, entry[TraceIdKey])
	assert.Equal(t, "D123", entry["order_id"])
}

func TestLogger_NoTraceID(t *testing.T) {
	buffer := &bytes.Buffer{}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buffer),
		zap.InfoLevel,
	)
	Log = zap.New(core)

	// 没有 trace 的 context 不应该 panic，也不应该带 trace 字段
	Warn(context.Background(), "no trace here")

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	_, ok := entry[TraceIdKey]
	assert.False(t, ok)
}
