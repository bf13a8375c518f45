package models

import "github.com/shopspring/decimal"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each status. Anything absent is illegal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid            PaymentStatus = "Unpaid"
	PaymentStatusPaid              PaymentStatus = "Paid"
	PaymentStatusRefunded          PaymentStatus = "Refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "PartiallyRefunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusUnpaid:            {PaymentStatusPaid},
	PaymentStatusPaid:              {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusRefunded:          {},
	PaymentStatusPartiallyRefunded: {},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "CreditCard"
	PaymentMethodDebitCard      PaymentMethod = "DebitCard"
	PaymentMethodBankTransfer   PaymentMethod = "BankTransfer"
	PaymentMethodCashOnDelivery PaymentMethod = "CashOnDelivery"
	PaymentMethodWallet         PaymentMethod = "Wallet"
)

// Order represents a placed customer order. Only the status, payment status and
// audit fields change after placement.
type Order struct {
	BaseEntity
	OrderNumber       string          `json:"order_number" gorm:"type:varchar(40);uniqueIndex;not null"`
	UserID            string          `json:"user_id" gorm:"type:varchar(64);index;not null"`
	SubTotal          decimal.Decimal `json:"sub_total" gorm:"type:decimal(12,2);not null"`
	ShippingCost      decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2);not null"`
	TaxAmount         decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	PaymentStatus     PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null"`
	PaymentMethod     PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	ShippingAddressID string          `json:"shipping_address_id" gorm:"type:varchar(36);not null"`
	BillingAddressID  *string         `json:"billing_address_id,omitempty" gorm:"type:varchar(36)"`
	Notes             *string         `json:"notes,omitempty" gorm:"type:varchar(500)"`
	Details           []OrderDetail   `json:"details,omitempty" gorm:"foreignKey:OrderID;references:ID"`
}

// OrderDetail is one line of an order. ProductName and UnitPrice are snapshots taken at
// placement and are never re-read from the live product.
type OrderDetail struct {
	BaseEntity
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null"`
	ProductName string          `json:"product_name" gorm:"type:varchar(100);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	SubTotal    decimal.Decimal `json:"sub_total" gorm:"type:decimal(12,2);not null"`
}

// DetailsTotal sums the line subtotals currently attached to the order.
func (o *Order) DetailsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.Details {
		total = total.Add(d.SubTotal)
	}
	return total
}
