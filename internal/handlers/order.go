package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/middleware"
	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/internal/utils"
)

// OrderHandler manages checkout and order endpoints.
type OrderHandler struct {
	db     *gorm.DB
	carts  *services.CartService
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, carts *services.CartService, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, carts: carts, orders: orders}
}

type createOrderRequest struct {
	ShippingAddress services.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                   `json:"payment_method" validate:"required"`
	PaymentID       string                   `json:"payment_id"`
	PaymentStatus   string                   `json:"payment_status" validate:"omitempty,oneof=pending paid failed"`
	TaxAmount       float64                  `json:"tax_amount"`
	Notes           string                   `json:"notes"`
	GuestEmail      string                   `json:"guest_email" validate:"omitempty,email"`
}

// CreateOrder turns the current cart into an order. Guests must supply
// a guest email for later tracking.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	if msg := utils.ValidateStruct(req.ShippingAddress); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	input := services.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentID:       req.PaymentID,
		PaymentStatus:   req.PaymentStatus,
		TaxAmount:       req.TaxAmount,
		Notes:           req.Notes,
	}

	if userID, ok := middleware.GetCurrentUserID(c); ok {
		input.UserID = &userID
		cart, err := h.carts.GetOrCreate(&userID, "")
		if err != nil {
			return err
		}
		input.CartID = cart.ID
	} else {
		guestToken := middleware.GetGuestToken(c)
		if guestToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing guest token")
		}
		if req.GuestEmail == "" {
			return fiber.NewError(fiber.StatusBadRequest, "guest email is required")
		}
		input.GuestEmail = req.GuestEmail
		cart, err := h.carts.GetOrCreate(nil, guestToken)
		if err != nil {
			return err
		}
		input.CartID = cart.ID
	}

	order, err := h.orders.CreateOrder(input)
	if err != nil {
		if err.Error() == "cart is empty" {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":             order.ID,
			"order_number":   order.OrderNumber,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"placed_at":      order.PlacedAt,
			"subtotal":       order.Subtotal,
			"shipping_fee":   order.ShippingFee,
			"total":          order.TotalAmount,
		},
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("StatusHistory").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// TrackOrder resolves an order by number + email for guests.
func (h *OrderHandler) TrackOrder(c *fiber.Ctx) error {
	orderNumber := c.Query("order_number")
	email := c.Query("email")
	if orderNumber == "" || email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "order_number and email are required")
	}

	order, err := h.orders.TrackOrder(orderNumber, email)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
