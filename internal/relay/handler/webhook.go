package handler

import (
	"context"
	"net/http"
	"strconv"

	"adarelay.com/internal/relay/flow"
	"adarelay.com/pkg/common"
	"adarelay.com/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// Reconciler 对账流程入口，测试里用 stub 替换
type Reconciler interface {
	Process(ctx context.Context, claim flow.PaymentClaim) (*flow.Result, error)
	CreateOrder(ctx context.Context, req flow.CreateOrderRequest) (int64, error)
}

type Webhook struct {
	flow Reconciler
}

func NewWebhook(f Reconciler) *Webhook {
	return &Webhook{flow: f}
}

// Payment POST /webhook/payment
// 返回格式是和 storefront 约定死的，别改字段名
func (h *Webhook) Payment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest,
			"Missing required fields: order_id, transaction_hash, and ada_amount are required")
		return
	}

	claim := flow.PaymentClaim{
		OrderID:         string(req.OrderID),
		TransactionHash: req.TransactionHash,
		AdaAmount:       req.AdaAmount,
		UsdAmount:       req.UsdAmount,
		AdaPrice:        req.AdaPrice,
		ShippingCost:    req.ShippingCost,
	}

	// 传 request context：客户端断开时要能穿透到校验重试循环里中止剩余等待
	res, err := h.flow.Process(c.Request.Context(), claim)
	if err != nil {
		ce := xerr.FromError(err)
		switch ce.Code {
		case xerr.ValidationError:
			common.Error(c, http.StatusBadRequest, ce.Msg)
		case xerr.PaymentInvalid:
			common.Error(c, http.StatusBadRequest, ce.Msg)
		case xerr.RateLimited:
			// 服务端绝不静默重试，把重试决策交还给调用方
			common.RetryLater(c, "Rate limit reached", "Please retry after a minute")
		default:
			// VerificationUnavailable / 未分类远端失败
			common.ErrorDetails(c, http.StatusInternalServerError, "Payment processing failed", ce.Msg)
		}
		return
	}

	resp := gin.H{
		"success":          true,
		"message":          res.Message,
		"transaction_hash": res.TransactionHash,
	}
	if res.OrderID != 0 {
		resp["order_id"] = res.OrderID
	}
	c.JSON(http.StatusOK, resp)
}

// CreateDraftOrder POST /webhook/create-draft-order
func (h *Webhook) CreateDraftOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorDetails(c, http.StatusInternalServerError, "Failed to process order", err.Error())
		return
	}

	items := make([]flow.CartItem, 0, len(req.Cart.Items))
	for _, it := range req.Cart.Items {
		variantID, err := strconv.ParseInt(string(it.VariantID), 10, 64)
		if err != nil {
			common.ErrorDetails(c, http.StatusInternalServerError, "Failed to process order",
				"invalid variant_id: "+string(it.VariantID))
			return
		}
		items = append(items, flow.CartItem{VariantID: variantID, Quantity: it.Quantity})
	}

	id, err := h.flow.CreateOrder(c.Request.Context(), flow.CreateOrderRequest{
		Items: items,
		Customer: flow.CustomerInfo{
			FirstName:     req.Customer.FirstName,
			LastName:      req.Customer.LastName,
			Email:         req.Customer.Email,
			Address1:      req.Customer.Address1,
			Address2:      req.Customer.Address2,
			City:          req.Customer.City,
			State:         req.Customer.State,
			Zip:           req.Customer.Zip,
			Phone:         req.Customer.Phone,
			WalletAddress: req.Customer.WalletAddress,
		},
	})
	if err != nil {
		common.ErrorDetails(c, http.StatusInternalServerError, "Failed to process order", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": id,
		"status":   "success",
	})
}

// Health GET /webhook/health 无副作用
func (h *Webhook) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
