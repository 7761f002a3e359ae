package flow

import (
	"context"
	"errors"
	"fmt"

	"adarelay.com/internal/relay/chain"
	"adarelay.com/internal/relay/shopify"
	"adarelay.com/pkg/logger"
	"adarelay.com/pkg/metrics"
	"adarelay.com/pkg/xerr"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 对账状态机：RECEIVED → VERIFYING → VERIFIED → COMPLETING → ANNOTATING → DONE
// 任何一步都可能提前退出到 REJECTED (支付无效) 或 FAILED (远端不可恢复)
type State string

const (
	StateReceived   State = "RECEIVED"
	StateVerifying  State = "VERIFYING"
	StateVerified   State = "VERIFIED"
	StateCompleting State = "COMPLETING"
	StateAnnotating State = "ANNOTATING"
	StateDone       State = "DONE"
	StateRejected   State = "REJECTED"
	StateFailed     State = "FAILED"
)

// ChainVerifier 链上校验，测试替身从这里换
type ChainVerifier interface {
	Verify(ctx context.Context, txHash string, expectedADA decimal.Decimal) (chain.VerificationResult, error)
}

// OrderGateway 商城订单操作，测试替身从这里换
// (原实现是进程级的全局客户端单例，这里改成注入接口)
type OrderGateway interface {
	CreateDraftOrder(ctx context.Context, input shopify.DraftOrderInput) (int64, error)
	GetDraftOrder(ctx context.Context, id string) (*shopify.DraftOrder, error)
	CompleteDraftOrder(ctx context.Context, id string) (*shopify.Completion, error)
	UpdateOrder(ctx context.Context, orderID int64, upd shopify.OrderUpdate) error
	EnsureCustomer(ctx context.Context, cust shopify.CustomerInput) error
}

// PaymentClaim storefront 结账时上报的支付声明，一次 HTTP 调用消费一次
type PaymentClaim struct {
	OrderID         string
	TransactionHash string
	AdaAmount       decimal.Decimal
	UsdAmount       decimal.Decimal
	// 可选注解项，缺失绝不阻塞支付确认
	AdaPrice     *decimal.Decimal
	ShippingCost *decimal.Decimal
}

// Validate 必填校验，不过关就不发起任何远端调用
func (c PaymentClaim) Validate() error {
	if c.OrderID == "" || c.TransactionHash == "" || !c.AdaAmount.IsPositive() {
		return xerr.New(xerr.ValidationError,
			"Missing required fields: order_id, transaction_hash, and ada_amount are required")
	}
	return nil
}

// Result DONE 态的产出：transaction_hash 必有，订单号尽力而为
// (拿不到订单号也是合法的成功终态)
type Result struct {
	Message         string
	OrderID         int64 // 0 = 未知
	TransactionHash string
}

type Flow struct {
	verifier ChainVerifier
	orders   OrderGateway
}

func New(verifier ChainVerifier, orders OrderGateway) *Flow {
	return &Flow{verifier: verifier, orders: orders}
}

// Process 支付对账主流程
// 指导原则：钱已经收到的情况下，后续任何次要步骤失败都不许把整体报成失败
func (f *Flow) Process(ctx context.Context, claim PaymentClaim) (*Result, error) {
	state := StateReceived

	// RECEIVED -> VERIFYING
	if err := claim.Validate(); err != nil {
		state = StateRejected
		logger.Warn(ctx, "claim rejected before any remote call",
			zap.String("state", string(state)), zap.String("order_id", claim.OrderID))
		return nil, err
	}

	state = StateVerifying
	logger.Info(ctx, "processing payment",
		zap.String("state", string(state)),
		zap.String("order_id", claim.OrderID),
		zap.String("tx", claim.TransactionHash),
		zap.String("ada_amount", claim.AdaAmount.String()),
	)

	// VERIFYING -> VERIFIED | REJECTED | FAILED
	vres, err := f.verifier.Verify(ctx, claim.TransactionHash, claim.AdaAmount)
	if err != nil {
		// 索引服务不可用 / 预算耗尽：此时还没动过订单，整个 webhook 可安全重放
		logger.Error(ctx, "verification unavailable",
			zap.String("state", string(StateFailed)), zap.Error(err))
		return nil, xerr.New(xerr.VerificationUnavailable, "Transaction verification failed")
	}
	if !vres.Valid {
		state = StateRejected
		// near-miss 留痕：打错地址还是金额不够，全靠这条日志
		fields := []zap.Field{
			zap.String("state", string(state)),
			zap.String("tx", claim.TransactionHash),
			zap.String("expected_ada", claim.AdaAmount.String()),
		}
		if vres.UTXOs != nil {
			fields = append(fields, zap.Any("outputs", vres.UTXOs.Outputs))
		}
		logger.Warn(ctx, "invalid payment detected", fields...)
		return nil, xerr.New(xerr.PaymentInvalid, "Invalid payment amount or address")
	}

	state = StateCompleting

	// VERIFIED -> COMPLETING：先看草稿单现状
	draft, err := f.orders.GetDraftOrder(ctx, claim.OrderID)
	if errors.Is(err, shopify.ErrDraftOrderNotFound) {
		// 草稿单完成后远端会删掉记录：404 更可能是"已经转成正式订单"
		// 宁可返回信息少一点的成功，也不要对已收款的单子报失败
		logger.Info(ctx, "draft order not found, likely already converted",
			zap.String("state", string(StateDone)), zap.String("order_id", claim.OrderID))
		return &Result{
			Message:         "Payment verified, order likely already processed",
			TransactionHash: claim.TransactionHash,
		}, nil
	}
	if err != nil {
		return nil, f.remoteFailure(ctx, "check draft order", err)
	}
	if draft.Status == shopify.DraftOrderStatusCompleted {
		// 同一笔支付通知的幂等重放：不能报错，也不能重复注解
		logger.Info(ctx, "draft order already completed",
			zap.String("state", string(StateDone)), zap.String("order_id", claim.OrderID))
		return &Result{
			Message:         "Order already completed",
			OrderID:         draft.OrderID,
			TransactionHash: claim.TransactionHash,
		}, nil
	}

	// COMPLETING -> ANNOTATING | FAILED
	comp, err := f.orders.CompleteDraftOrder(ctx, claim.OrderID)
	if err != nil {
		return nil, f.remoteFailure(ctx, "complete draft order", err)
	}
	if comp.AlreadyPaid {
		return &Result{
			Message:         "Order already paid and completed",
			TransactionHash: claim.TransactionHash,
		}, nil
	}
	if comp.OrderID == 0 {
		return &Result{
			Message:         "Payment verified and order likely completed",
			TransactionHash: claim.TransactionHash,
		}, nil
	}

	state = StateAnnotating

	// ANNOTATING -> DONE：注解是 best-effort 的审计痕迹
	// 订单已经完成、款已确认，这一步失败只降级为 warn
	if err := f.orders.UpdateOrder(ctx, comp.OrderID, f.annotation(claim)); err != nil {
		metrics.AnnotationFailTotal.Inc()
		logger.Warn(ctx, "order completed but annotation failed, not critical",
			zap.String("state", string(state)),
			zap.Int64("shopify_order_id", comp.OrderID),
			zap.Error(err),
		)
	} else {
		logger.Info(ctx, "order annotated with payment details",
			zap.Int64("shopify_order_id", comp.OrderID))
	}

	return &Result{
		Message:         "Payment verified and order completed",
		OrderID:         comp.OrderID,
		TransactionHash: claim.TransactionHash,
	}, nil
}

// remoteFailure 把网关错误折算成业务错误码
func (f *Flow) remoteFailure(ctx context.Context, op string, err error) error {
	if errors.Is(err, shopify.ErrRateLimited) {
		logger.Warn(ctx, "shopify rate limited", zap.String("op", op))
		return xerr.New(xerr.RateLimited, "Rate limit reached")
	}
	logger.Error(ctx, "shopify call failed",
		zap.String("state", string(StateFailed)), zap.String("op", op), zap.Error(err))
	return xerr.Newf(xerr.ServerCommonError, "%s: %v", op, err)
}

// annotation 拼支付注解：结构化属性 + 自由文本备注
// 可选字段缺失就省略对应属性，绝不因此失败
func (f *Flow) annotation(claim PaymentClaim) shopify.OrderUpdate {
	note := fmt.Sprintf("Paid with Cardano ADA\nTransaction Hash: %s\nADA Amount: %s",
		claim.TransactionHash, claim.AdaAmount.String())
	if claim.AdaPrice != nil {
		note += fmt.Sprintf("\nADA Price: $%s", claim.AdaPrice.String())
	}

	attrs := []shopify.NoteAttribute{
		{Name: "cardano_transaction", Value: claim.TransactionHash},
		{Name: "ada_amount", Value: claim.AdaAmount.String()},
	}
	if claim.AdaPrice != nil {
		attrs = append(attrs, shopify.NoteAttribute{Name: "ada_price", Value: claim.AdaPrice.String()})
	}
	if !claim.UsdAmount.IsZero() {
		attrs = append(attrs, shopify.NoteAttribute{Name: "usd_amount", Value: claim.UsdAmount.String()})
	}
	if claim.ShippingCost != nil {
		attrs = append(attrs, shopify.NoteAttribute{Name: "shipping_cost", Value: claim.ShippingCost.String()})
	}

	return shopify.OrderUpdate{
		FinancialStatus: "paid",
		Note:            note,
		NoteAttributes:  attrs,
		Tags:            "cardano-payment",
	}
}
