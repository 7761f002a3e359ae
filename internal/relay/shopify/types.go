package shopify

// Admin REST API (2024-01) 的载荷结构，字段名对齐远端

type LineItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type CustomerPayload struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type ShippingAddress struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	Zip         string `json:"zip,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DraftOrderInput struct {
	LineItems       []LineItem       `json:"line_items"`
	Email           string           `json:"email,omitempty"`
	Customer        *CustomerPayload `json:"customer,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	NoteAttributes  []NoteAttribute  `json:"note_attributes,omitempty"`
}

// DraftOrder 草稿单快照
// 远端一旦转成正式订单就会删掉草稿单记录，所以 404 不一定是坏事
type DraftOrder struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	OrderID int64  `json:"order_id"`
}

const DraftOrderStatusCompleted = "completed"

// Completion 完成草稿单的结果
// AlreadyPaid: 远端报"已支付"，按成功处理但拿不到关联订单号
type Completion struct {
	OrderID     int64
	AlreadyPaid bool
}

// OrderUpdate 正式订单的注解载荷 (财务状态 + 备注 + 结构化属性)
type OrderUpdate struct {
	FinancialStatus string          `json:"financial_status,omitempty"`
	Note            string          `json:"note,omitempty"`
	NoteAttributes  []NoteAttribute `json:"note_attributes,omitempty"`
	Tags            string          `json:"tags,omitempty"`
}

type CustomerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}
