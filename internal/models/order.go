package models

import (
	"time"

	"github.com/google/uuid"
)

// Order lifecycle statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Order struct {
	BaseModel
	OrderNumber   string     `gorm:"uniqueIndex" json:"order_number"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User          *User      `json:"user,omitempty"`
	GuestEmail    string     `gorm:"index" json:"guest_email,omitempty"`
	Status        string     `gorm:"index" json:"status"`
	PlacedAt      time.Time  `json:"placed_at"`
	Subtotal      float64    `json:"subtotal"`
	ShippingFee   float64    `json:"shipping_fee"`
	TaxAmount     float64    `json:"tax_amount"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentID     string     `json:"payment_id,omitempty"`
	PaymentStatus string     `json:"payment_status"`

	// Shipping address snapshot taken at checkout.
	ShipFirstName string `json:"ship_first_name"`
	ShipLastName  string `json:"ship_last_name"`
	ShipEmail     string `json:"ship_email"`
	ShipPhone     string `json:"ship_phone"`
	ShipAddress   string `json:"ship_address"`
	ShipCity      string `json:"ship_city"`
	ShipState     string `json:"ship_state"`
	ShipPincode   string `json:"ship_pincode"`

	Notes         string               `json:"notes"`
	Items         []OrderItem          `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
}

// OrderStatusHistory is the audit trail of status transitions. Orders
// are never deleted, only transitioned.
type OrderStatusHistory struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Status  string    `json:"status"`
	Notes   string    `json:"notes,omitempty"`
}
