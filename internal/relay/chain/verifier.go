package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adarelay.com/pkg/logger"
	"adarelay.com/pkg/metrics"
	"adarelay.com/pkg/retry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 1 ADA = 1,000,000 lovelace
const LovelacePerADA = 1_000_000

const lovelaceUnit = "lovelace"

// TxSource 索引服务的读接口，测试替身从这里换
type TxSource interface {
	GetTransaction(ctx context.Context, txHash string) (*Transaction, error)
	GetTransactionUTXOs(ctx context.Context, txHash string) (*TxUTXOs, error)
}

// Verifier 链上支付校验器
// 判定规则：存在一个 output，地址与收款钱包完全一致 (不做任何归一化)，
// 且 lovelace 数量 >= floor(期望 ADA × 1e6)
type Verifier struct {
	src    TxSource
	wallet string
	policy retry.Policy
}

// DefaultPolicy 20 次 × 5s，上限约 100 秒，防止 hash 压根不存在时无限阻塞
func DefaultPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 20, Delay: 5 * time.Second}
}

func NewVerifier(src TxSource, wallet string, policy retry.Policy) *Verifier {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPolicy()
	}
	return &Verifier{src: src, wallet: wallet, policy: policy}
}

// Verify 校验 txHash 是否向收款钱包支付了至少 expectedADA
// 只有 not-found 会按重试处理；其他取数错误立即放弃，归类为"校验不可用"而非"校验为假"
// Valid=false 时交易照样返回，调用方可记录 near-miss
func (v *Verifier) Verify(ctx context.Context, txHash string, expectedADA decimal.Decimal) (VerificationResult, error) {
	// 1. ADA -> lovelace，向零取整 (floor) 得到确定性的最低接受阈值
	threshold := expectedADA.Mul(decimal.NewFromInt(LovelacePerADA)).Floor()

	// 2/3. 取交易 + 取 outputs，404 在重试预算内等索引器追上链
	var (
		tx    *Transaction
		utxos *TxUTXOs
	)
	err := v.policy.Do(ctx, func() error {
		t, err := v.src.GetTransaction(ctx, txHash)
		if err != nil {
			if errors.Is(err, ErrTxNotFound) {
				metrics.VerifyFetchTotal.WithLabelValues("not_found").Inc()
			} else {
				metrics.VerifyFetchTotal.WithLabelValues("error").Inc()
			}
			return err
		}
		u, err := v.src.GetTransactionUTXOs(ctx, txHash)
		if err != nil {
			metrics.VerifyFetchTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.VerifyFetchTotal.WithLabelValues("found").Inc()
		tx, utxos = t, u
		return nil
	}, func(err error) bool {
		return errors.Is(err, ErrTxNotFound)
	})
	if err != nil {
		return VerificationResult{}, fmt.Errorf("fetch transaction %s: %w", txHash, err)
	}

	// 4. 判定：地址完全匹配 + lovelace 数量达到阈值
	valid := false
	for _, out := range utxos.Outputs {
		if out.Address != v.wallet {
			continue
		}
		for _, amt := range out.Amount {
			if amt.Unit != lovelaceUnit {
				continue
			}
			q, qerr := decimal.NewFromString(amt.Quantity)
			if qerr != nil {
				logger.Warn(ctx, "bad lovelace quantity from indexer",
					zap.String("tx", txHash), zap.String("quantity", amt.Quantity))
				continue
			}
			if q.GreaterThanOrEqual(threshold) {
				valid = true
			}
		}
	}

	logger.Info(ctx, "链上校验完成",
		zap.String("tx", txHash),
		zap.Bool("valid", valid),
		zap.String("threshold_lovelace", threshold.String()),
	)

	return VerificationResult{Valid: valid, Transaction: tx, UTXOs: utxos}, nil
}
