package flow

import (
	"context"
	"fmt"

	"adarelay.com/internal/relay/shopify"
	"adarelay.com/pkg/logger"
	"go.uber.org/zap"
)

// CartItem storefront 购物车行项目
type CartItem struct {
	VariantID int64
	Quantity  int
}

// CustomerInfo 结账填写的客户信息，WalletAddress 是付款用的 Cardano 地址
type CustomerInfo struct {
	FirstName     string
	LastName      string
	Email         string
	Address1      string
	Address2      string
	City          string
	State         string
	Zip           string
	Phone         string
	WalletAddress string
}

type CreateOrderRequest struct {
	Items    []CartItem
	Customer CustomerInfo
}

// CreateOrder 为购物车创建待支付草稿单，返回草稿单 id
// 客户登记 (GraphQL) 是 best-effort：失败不阻塞下单，草稿单里反正带着客户信息
func (f *Flow) CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error) {
	if len(req.Items) == 0 {
		return 0, fmt.Errorf("cart is empty")
	}

	if err := f.orders.EnsureCustomer(ctx, shopify.CustomerInput{
		Email:     req.Customer.Email,
		FirstName: req.Customer.FirstName,
		LastName:  req.Customer.LastName,
		Phone:     req.Customer.Phone,
	}); err != nil {
		logger.Warn(ctx, "customer registration failed, proceeding with draft order",
			zap.String("email", req.Customer.Email), zap.Error(err))
	}

	items := make([]shopify.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, shopify.LineItem{VariantID: it.VariantID, Quantity: it.Quantity})
	}

	input := shopify.DraftOrderInput{
		LineItems: items,
		Email:     req.Customer.Email,
		Customer: &shopify.CustomerPayload{
			Email:     req.Customer.Email,
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
		},
		ShippingAddress: &shopify.ShippingAddress{
			FirstName:   req.Customer.FirstName,
			LastName:    req.Customer.LastName,
			Address1:    req.Customer.Address1,
			Address2:    req.Customer.Address2,
			City:        req.Customer.City,
			Province:    req.Customer.State,
			Zip:         req.Customer.Zip,
			CountryCode: "US", // storefront 目前只做美国市场
			Phone:       req.Customer.Phone,
		},
	}
	if req.Customer.WalletAddress != "" {
		input.NoteAttributes = []shopify.NoteAttribute{
			{Name: "cardano_wallet", Value: req.Customer.WalletAddress},
		}
	}

	id, err := f.orders.CreateDraftOrder(ctx, input)
	if err != nil {
		logger.Error(ctx, "create draft order failed", zap.Error(err))
		return 0, err
	}

	logger.Info(ctx, "draft order created", zap.Int64("draft_order_id", id))
	return id, nil
}
