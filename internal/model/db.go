package model

import "time"

type Product struct {
	ID    string `gorm:"primaryKey;size:64;not null" json:"id"` // product sku
	Name  string `gorm:"size:128;not null" json:"name"`
	Price int64  `gorm:"not null" json:"price"` // VND
}

type ShippingInfo struct {
	Recipient string `gorm:"size:128" json:"recipient"`
	Address   string `gorm:"size:512" json:"address"`
	Phone     string `gorm:"size:32" json:"phone"`
}

type Order struct {
	ID            string `gorm:"primaryKey;size:64;not null" json:"id"`
	Status        string `gorm:"size:32;index;not null" json:"status"`
	PaymentMethod string `gorm:"size:32;not null" json:"payment_method"`
	TotalAmount   int64  `gorm:"not null" json:"total_amount"` // VND, sum of item subtotals
	// Provider transaction reference. Attached at most once, never changed;
	// webhook events are matched against it.
	TransactionID *string      `gorm:"size:128;uniqueIndex" json:"external_transaction_id,omitempty"`
	Shipping      ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	Items         []OrderItem  `gorm:"foreignKey:OrderID;references:ID" json:"items"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type OrderItem struct {
	ID uint `gorm:"primaryKey" json:"-"`
	// FK → order.id
	OrderID   string `gorm:"size:64;index;not null" json:"-"`
	ProductID string `gorm:"size:64;index;not null" json:"product_id"`
	Quantity  int32  `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
}

const (
	StatusPending         = "pending"
	StatusAwaitingPayment = "awaiting_payment"
	StatusProcessing      = "processing"
	StatusShipped         = "shipped"
	StatusDelivered       = "delivered"
	StatusCancelled       = "cancelled"
	StatusPaymentFailed   = "payment_failed"

	MethodQRTransfer     = "qr_transfer"
	MethodBankTransfer   = "bank_transfer"
	MethodCashOnDelivery = "cash_on_delivery"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case MethodQRTransfer, MethodBankTransfer, MethodCashOnDelivery:
		return true
	}
	return false
}
