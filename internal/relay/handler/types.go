package handler

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FlexID storefront 的 JS 端有时传数字有时传字符串，两种都认
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

type paymentRequest struct {
	OrderID         FlexID          `json:"order_id"`
	TransactionHash string          `json:"transaction_hash"`
	AdaAmount       decimal.Decimal `json:"ada_amount"`
	UsdAmount       decimal.Decimal `json:"usd_amount"`
	// 历史版本里这两个字段时有时无，按可选处理，缺失不阻塞确认
	AdaPrice     *decimal.Decimal `json:"ada_price"`
	ShippingCost *decimal.Decimal `json:"shipping_cost"`
}

type createOrderRequest struct {
	Cart struct {
		Items []struct {
			VariantID FlexID `json:"variant_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	} `json:"cart"`
	Customer struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		Email         string `json:"email"`
		Address1      string `json:"address1"`
		Address2      string `json:"address2"`
		City          string `json:"city"`
		State         string `json:"state"`
		Zip           string `json:"zip"`
		Phone         string `json:"phone"`
		WalletAddress string `json:"wallet_address"`
	} `json:"customer"`
}
