package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":      totalUsers,
			"total_products":   totalProducts,
			"total_orders":     totalOrders,
			"total_revenue":    totalRevenue,
			"pending_orders":   ordersByStatus[models.OrderStatusPending],
			"orders_by_status": ordersByStatus,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering and search.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where(
			"order_number LIKE ? OR ship_email LIKE ? OR guest_email LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
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

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	Notes  string `json:"notes"`
}

// UpdateOrderStatus transitions an order along its lifecycle.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	order, err := h.orders.UpdateStatus(orderID, req.Status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return fiber.NewError(fiber.StatusConflict, "status transition not allowed")
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":     order.ID,
		"status": order.Status,
	}})
}

// ProcessPayment records a gateway result against an order.
func (h *AdminHandler) ProcessPayment(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req services.PaymentResult
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	order, err := h.orders.ProcessPayment(orderID, req)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":             order.ID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	}})
}
