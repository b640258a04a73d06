package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/pkg/rabbitmq"
)

// ErrInvalidTransition is returned for a status change the lifecycle
// does not allow.
var ErrInvalidTransition = errors.New("invalid order status transition")

// ErrOrderNotFound is returned when an order id or number resolves to
// nothing.
var ErrOrderNotFound = errors.New("order not found")

// orderTransitions defines the allowed lifecycle edges. Cancellation is
// possible any time before shipping; orders are never deleted.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// OrderService owns order creation, payment processing and status
// transitions.
type OrderService struct {
	db       *gorm.DB
	carts    *CartService
	telegram *TelegramService
	events   *rabbitmq.Client
}

// NewOrderService constructs an OrderService. telegram and events may
// be nil; the corresponding side effects are skipped.
func NewOrderService(db *gorm.DB, carts *CartService, telegram *TelegramService, events *rabbitmq.Client) *OrderService {
	return &OrderService{db: db, carts: carts, telegram: telegram, events: events}
}

// ShippingAddress is the checkout address snapshot.
type ShippingAddress struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state"`
	Pincode   string `json:"pincode" validate:"required"`
}

// CreateOrderInput collects everything checkout needs to synthesize an
// order from the current cart.
type CreateOrderInput struct {
	UserID          *uuid.UUID
	GuestEmail      string
	CartID          uuid.UUID
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentID       string
	PaymentStatus   string
	TaxAmount       float64
	Notes           string
}

// GenerateOrderNumber builds "NUSHKA" + the last six digits of the
// epoch in milliseconds + a random three-digit suffix. Collisions are
// possible within a millisecond and handled by the unique index plus
// retry in CreateOrder.
func GenerateOrderNumber() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		suffix = big.NewInt(time.Now().UnixNano() % 1000)
	}
	return fmt.Sprintf("NUSHKA%s%03d", millis[len(millis)-6:], suffix.Int64())
}

// CreateOrder snapshots the cart into an order, seeds the status
// history and clears the cart, all in one transaction. The initial
// status is confirmed when payment already succeeded, pending
// otherwise.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	var cart models.Cart
	if err := s.db.Preload("Items").First(&cart, "id = ?", input.CartID).Error; err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, errors.New("cart is empty")
	}

	status := models.OrderStatusPending
	if input.PaymentStatus == models.PaymentStatusPaid {
		status = models.OrderStatusConfirmed
	}
	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}

	order := models.Order{
		UserID:        input.UserID,
		GuestEmail:    input.GuestEmail,
		Status:        status,
		PlacedAt:      time.Now(),
		PaymentMethod: input.PaymentMethod,
		PaymentID:     input.PaymentID,
		PaymentStatus: paymentStatus,
		TaxAmount:     input.TaxAmount,
		ShipFirstName: input.ShippingAddress.FirstName,
		ShipLastName:  input.ShippingAddress.LastName,
		ShipEmail:     input.ShippingAddress.Email,
		ShipPhone:     input.ShippingAddress.Phone,
		ShipAddress:   input.ShippingAddress.Address,
		ShipCity:      input.ShippingAddress.City,
		ShipState:     input.ShippingAddress.State,
		ShipPincode:   input.ShippingAddress.Pincode,
		Notes:         input.Notes,
	}

	var subtotal float64
	for _, line := range cart.Items {
		lineTotal := line.UnitPrice * float64(line.Quantity)
		subtotal += lineTotal
		productID := line.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   &productID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
		})
	}

	order.Subtotal = subtotal
	summary := s.carts.Summary(&cart)
	order.ShippingFee = summary.Shipping
	order.TotalAmount = subtotal + order.ShippingFee + order.TaxAmount

	// The timestamp+random number scheme can collide under concurrent
	// checkouts; the unique index catches that and we retry with a
	// fresh number.
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		order.OrderNumber = GenerateOrderNumber()
		createErr = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			history := models.OrderStatusHistory{
				OrderID: order.ID,
				Status:  order.Status,
				Notes:   "order placed",
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}

			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
				"total":      0,
				"item_count": 0,
				"version":    gorm.Expr("version + 1"),
			}).Error
		})
		if createErr == nil {
			break
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return nil, createErr
		}
		order.ID = uuid.Nil
	}
	if createErr != nil {
		return nil, createErr
	}

	go s.dispatchOrderCreated(order)

	return &order, nil
}

// dispatchOrderCreated publishes the order event and notifies the admin
// chat. Failures are logged, never surfaced to the customer.
func (s *OrderService) dispatchOrderCreated(order models.Order) {
	if s.events != nil {
		email := order.GuestEmail
		if email == "" {
			email = order.ShipEmail
		}
		event := rabbitmq.OrderEvent{
			OrderID:       order.ID.String(),
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			Total:         order.TotalAmount,
			CustomerEmail: email,
		}
		if err := s.events.PublishOrderCreated(event); err != nil {
			log.Printf("[Order] Failed to publish order created event for %s: %v", order.OrderNumber, err)
		}
	}

	if s.telegram != nil {
		items := make([]OrderItemNotification, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, OrderItemNotification{
				Name:     item.ProductName,
				Quantity: item.Quantity,
				Price:    item.UnitPrice,
			})
		}

		notification := OrderNotification{
			OrderNumber:   order.OrderNumber,
			Items:         items,
			TotalAmount:   order.TotalAmount,
			CustomerName:  order.ShipFirstName + " " + order.ShipLastName,
			CustomerPhone: order.ShipPhone,
			PaymentMethod: order.PaymentMethod,
			Status:        order.Status,
		}
		if err := s.telegram.NotifyNewOrder(notification); err != nil {
			log.Printf("[Order] Telegram notification failed for %s: %v", order.OrderNumber, err)
		}
	}
}

// UpdateStatus transitions an order along the lifecycle and appends an
// audit entry.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, status, notes string) (*models.Order, error) {
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !canTransition(order.Status, status) {
			return ErrInvalidTransition
		}

		order.Status = status
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", status).Error; err != nil {
			return err
		}

		history := models.OrderStatusHistory{OrderID: orderID, Status: status, Notes: notes}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// PaymentResult is the gateway callback payload.
type PaymentResult struct {
	PaymentID     string `json:"payment_id" validate:"required"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status" validate:"required,oneof=completed failed"`
}

// ProcessPayment records a gateway result. A completed payment marks
// the order paid and confirms it; a failed one is recorded as such.
func (s *OrderService) ProcessPayment(orderID uuid.UUID, payment PaymentResult) (*models.Order, error) {
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"payment_id": payment.PaymentID,
		}
		if payment.PaymentMethod != "" {
			updates["payment_method"] = payment.PaymentMethod
		}

		if payment.Status == "completed" {
			updates["payment_status"] = models.PaymentStatusPaid
			order.PaymentStatus = models.PaymentStatusPaid
			if order.Status == models.OrderStatusPending {
				updates["status"] = models.OrderStatusConfirmed
				order.Status = models.OrderStatusConfirmed
				history := models.OrderStatusHistory{
					OrderID: orderID,
					Status:  models.OrderStatusConfirmed,
					Notes:   "payment received",
				}
				if err := tx.Create(&history).Error; err != nil {
					return err
				}
			}
		} else {
			updates["payment_status"] = models.PaymentStatusFailed
			order.PaymentStatus = models.PaymentStatusFailed
		}

		order.PaymentID = payment.PaymentID
		return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == models.PaymentStatusPaid && s.telegram != nil {
		go func() {
			notification := PaymentSuccessNotification{
				OrderNumber: order.OrderNumber,
				PaymentID:   order.PaymentID,
				Amount:      order.TotalAmount,
			}
			if err := s.telegram.NotifyPaymentSuccess(notification); err != nil {
				log.Printf("[Order] Payment notification failed for %s: %v", order.OrderNumber, err)
			}
		}()
	}

	return &order, nil
}

// TrackOrder resolves an order for guest tracking by number + email.
// The email must match either the guest email or the shipping email.
func (s *OrderService) TrackOrder(orderNumber, email string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("StatusHistory").
		Where("order_number = ? AND (guest_email = ? OR ship_email = ?)", orderNumber, email, email).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func canTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
