package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"adarelay.com/pkg/logger"
	"go.uber.org/zap"
)

// 客户创建走 GraphQL (REST 的 customer 接口在新版本里收紧了权限)
const customerCreateMutation = `
mutation customerCreate($input: CustomerInput!) {
  customerCreate(input: $input) {
    customer { id email }
    userErrors { field message }
  }
}`

// EnsureCustomer 在商城侧登记客户，best-effort：
// 邮箱已存在归一化为成功；真实失败由调用方决定是否忽略
func (c *Client) EnsureCustomer(ctx context.Context, cust CustomerInput) error {
	if cust.Email == "" {
		return nil
	}

	input := map[string]interface{}{
		"email":     cust.Email,
		"firstName": cust.FirstName,
		"lastName":  cust.LastName,
	}
	if cust.Phone != "" {
		input["phone"] = cust.Phone
	}
	payload := map[string]interface{}{
		"query":     customerCreateMutation,
		"variables": map[string]interface{}{"input": input},
	}

	data, err := c.do(ctx, "customer_create", http.MethodPost, "graphql.json", payload)
	if err != nil {
		return err
	}

	var resp struct {
		Data struct {
			CustomerCreate struct {
				Customer *struct {
					ID string `json:"id"`
				} `json:"customer"`
				UserErrors []struct {
					Field   []string `json:"field"`
					Message string   `json:"message"`
				} `json:"userErrors"`
			} `json:"customerCreate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("unmarshal customerCreate: %w", err)
	}

	for _, ue := range resp.Data.CustomerCreate.UserErrors {
		// 已注册过的客户：目标已达成
		if strings.Contains(ue.Message, "has already been taken") {
			logger.Debug(ctx, "customer already exists", zap.String("email", cust.Email))
			return nil
		}
		return fmt.Errorf("customerCreate: %s", ue.Message)
	}
	return nil
}
